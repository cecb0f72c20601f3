package metrics

import "errors"

var (
	ErrPushgatewayURLRequired = errors.New("metrics: pushgateway URL обязателен когда метрики включены")
	ErrPushgatewayURLInvalid  = errors.New("metrics: pushgateway URL должен быть URL со схемой и host")
	ErrJobNameRequired        = errors.New("metrics: job name обязателен")
	ErrInvalidTimeout         = errors.New("metrics: timeout должен быть положительным")
)
