package constants

// Версия и коммит задаются при сборке:
//
//	go build -ldflags "-X github.com/Kargones/rb-ci/internal/constants.Version=1.2.0 \
//	  -X github.com/Kargones/rb-ci/internal/constants.PreCommitHash=$(git rev-parse --short HEAD)"
var (
	// Version - версия приложения
	Version = "dev"
	// PreCommitHash - хеш коммита сборки
	PreCommitHash = "unknown"
)
