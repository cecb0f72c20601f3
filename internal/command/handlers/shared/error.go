package shared

import (
	"fmt"
	"io"
)

// HandleError печатает ошибку в текстовом формате и возвращает её с кодом.
func HandleError(w io.Writer, message, code string) error {
	_, _ = fmt.Fprintf(w, "Ошибка: %s\nКод: %s\n", message, code) //nolint:errcheck // stdout
	return fmt.Errorf("%s: %s", code, message)
}
