package migrations

import (
	"fmt"
	"os"
	"regexp"
	"slices"
)

// migrationFileRe: <14 цифр>_<Имя>.cs. Файлы *.Designer.cs и снимок модели не подходят.
var migrationFileRe = regexp.MustCompile(`^(\d{14}_[A-Za-z0-9_]+)\.cs$`)

// ScanDir возвращает отсортированные ID миграций по именам файлов в dir.
func ScanDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if m := migrationFileRe.FindStringSubmatch(e.Name()); m != nil {
			ids = append(ids, m[1])
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// Diff - сравнение локальных миграций с применёнными к БД.
type Diff struct {
	Local   []string `json:"local"`
	Applied []string `json:"applied"`
	// Pending - есть в коде, не применены.
	Pending []string `json:"pending"`
	// Unknown - применены, но файла миграции нет.
	Unknown []string `json:"unknown"`
}

// Clean сообщает, что БД в точности соответствует набору миграций.
func (d Diff) Clean() bool {
	return len(d.Pending) == 0 && len(d.Unknown) == 0
}

// Compare сравнивает наборы ID. Результирующие списки отсортированы.
func Compare(local, applied []string) Diff {
	localSet := make(map[string]struct{}, len(local))
	for _, id := range local {
		localSet[id] = struct{}{}
	}
	appliedSet := make(map[string]struct{}, len(applied))
	for _, id := range applied {
		appliedSet[id] = struct{}{}
	}

	d := Diff{
		Local:   sortedCopy(local),
		Applied: sortedCopy(applied),
		Pending: []string{},
		Unknown: []string{},
	}
	for _, id := range d.Local {
		if _, ok := appliedSet[id]; !ok {
			d.Pending = append(d.Pending, id)
		}
	}
	for _, id := range d.Applied {
		if _, ok := localSet[id]; !ok {
			d.Unknown = append(d.Unknown, id)
		}
	}
	return d
}

func sortedCopy(s []string) []string {
	out := slices.Clone(s)
	if out == nil {
		out = []string{}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
