package browser

import (
	"sync"
	"testing"
	"time"

	cdplog "github.com/chromedp/cdproto/log"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/stretchr/testify/assert"
)

// Обработка событий проверяется без запуска Chrome.
func TestChromeNavigator_handleEvent(t *testing.T) {
	tests := []struct {
		name string
		ev   any
		want []ConsoleMessage
	}{
		{
			name: "console.error",
			ev: &runtime.EventConsoleAPICalled{
				Type: runtime.APITypeError,
				Args: []*runtime.RemoteObject{
					{Description: "Failed to load replay"},
					{Description: "Error: boom"},
				},
			},
			want: []ConsoleMessage{{Kind: ConsoleKindError, Text: "Failed to load replay Error: boom"}},
		},
		{
			name: "console.warn игнорируется",
			ev:   &runtime.EventConsoleAPICalled{Type: runtime.APITypeWarning},
		},
		{
			name: "исключение",
			ev: &runtime.EventExceptionThrown{ExceptionDetails: &runtime.ExceptionDetails{
				Text:      "Uncaught",
				Exception: &runtime.RemoteObject{Description: "TypeError: x is undefined"},
			}},
			want: []ConsoleMessage{{Kind: ConsoleKindException, Text: "TypeError: x is undefined"}},
		},
		{
			name: "ошибка в логе",
			ev:   &cdplog.EventEntryAdded{Entry: &cdplog.Entry{Level: cdplog.LevelError, Text: "404 favicon"}},
			want: []ConsoleMessage{{Kind: ConsoleKindLog, Text: "404 favicon"}},
		},
		{
			name: "info в логе игнорируется",
			ev:   &cdplog.EventEntryAdded{Entry: &cdplog.Entry{Level: cdplog.LevelInfo, Text: "ok"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &ChromeNavigator{idle: newIdleWatch()}
			var mu sync.Mutex
			var got []ConsoleMessage
			n.OnConsole(func(m ConsoleMessage) {
				mu.Lock()
				defer mu.Unlock()
				got = append(got, m)
			})

			n.handleEvent(tt.ev)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdleWatch(t *testing.T) {
	n := &ChromeNavigator{idle: newIdleWatch()}

	waitCh := n.idle.wait()
	n.handleEvent(&page.EventLifecycleEvent{Name: "networkIdle"})
	select {
	case <-waitCh:
	case <-time.After(time.Second):
		t.Fatal("networkIdle не доставлен")
	}

	n.handleEvent(&page.EventLifecycleEvent{Name: "networkIdle"})
	n.handleEvent(&page.EventLifecycleEvent{Name: "init"})
	select {
	case <-n.idle.wait():
		t.Fatal("после init сигнал должен быть сброшен")
	default:
	}
}
