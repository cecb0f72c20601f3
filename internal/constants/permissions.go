package constants

import "os"

// DirPermLogs - права каталога для файла логов при BR_LOG_OUTPUT=file (owner rwx, group r-x).
const DirPermLogs os.FileMode = 0o750
