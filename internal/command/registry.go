package command

import (
	"regexp"
	"sort"
	"sync"
)

var (
	registry = make(map[string]Handler)
	mu       sync.RWMutex

	// Строгий kebab-case: без завершающего и двойного дефиса.
	commandNamePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)
)

// Register добавляет обработчик в реестр.
// Паникует на nil, пустом или не kebab-case имени и на повторной регистрации:
// всё это ошибки программиста, которые должны всплыть в первом же тесте.
func Register(h Handler) {
	if h == nil {
		panic("command: nil handler")
	}
	name := h.Name()
	if name == "" {
		panic("command: empty handler name")
	}
	if !commandNamePattern.MatchString(name) {
		panic("command: invalid handler name format (must be kebab-case): " + name)
	}

	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[name]; exists {
		panic("command: duplicate handler registration for " + name)
	}
	registry[name] = h
}

// RegisterWithAlias регистрирует h под его именем и, если deprecated не пуст,
// под старым именем через DeprecatedBridge. Старые имена - имена скриптов,
// которыми команды вызывались в CI раньше, формат имени для них не проверяется.
func RegisterWithAlias(h Handler, deprecated string) {
	if h == nil {
		panic("command: nil handler")
	}
	Register(h)
	if deprecated == "" {
		return
	}
	if deprecated == h.Name() {
		panic("command: deprecated name cannot be same as handler name: " + deprecated)
	}

	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[deprecated]; exists {
		panic("command: duplicate handler registration for " + deprecated)
	}
	registry[deprecated] = &DeprecatedBridge{actual: h, deprecated: deprecated, newName: h.Name()}
}

// Get ищет обработчик по имени или старому имени.
func Get(name string) (Handler, bool) {
	mu.RLock()
	defer mu.RUnlock()
	h, ok := registry[name]
	return h, ok
}

// Names возвращает все зарегистрированные имена, включая старые, по алфавиту.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Info - команда и её старое имя, если есть.
type Info struct {
	Name            string
	Description     string
	DeprecatedAlias string
}

// ListAllWithAliases возвращает команды без DeprecatedBridge, старое имя
// указывается в DeprecatedAlias основной команды. Сортировка по имени.
func ListAllWithAliases() []Info {
	mu.RLock()
	defer mu.RUnlock()

	aliases := make(map[string]string)
	for _, h := range registry {
		if b, ok := h.(*DeprecatedBridge); ok {
			aliases[b.newName] = b.deprecated
		}
	}

	result := make([]Info, 0, len(registry)-len(aliases))
	for name, h := range registry {
		if _, isBridge := h.(*DeprecatedBridge); isBridge {
			continue
		}
		result = append(result, Info{Name: name, Description: h.Description(), DeprecatedAlias: aliases[name]})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// clearRegistry - только для тестов.
func clearRegistry() {
	mu.Lock()
	defer mu.Unlock()
	registry = make(map[string]Handler)
}
