package version

import "fmt"

// Переменные заполняются при сборке через -ldflags:
//
//	-X .../internal/version.version=1.4.0 -X .../internal/version.commit=abc1234
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// Service — имя сервиса в логах и User-Agent.
const Service = "salesconsole"

// Version возвращает версию сборки.
func Version() string { return version }

// String возвращает полную строку версии для флага --version.
func String() string {
	return fmt.Sprintf("%s version=%s commit=%s built=%s", Service, version, commit, buildDate)
}

// UserAgent возвращает значение заголовка User-Agent для HTTP-клиента консоли.
func UserAgent() string {
	return fmt.Sprintf("%s/%s", Service, version)
}
