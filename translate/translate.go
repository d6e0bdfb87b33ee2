// Package translate formats user-visible messages for the emulator.
//
// Messages are written as en-US fmt formats and rendered through an x/text
// printer matched against the locales reported by the operating system.
package translate

import (
	"log"
	"sync"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	mutex   sync.Mutex
	printer *message.Printer
)

// systemPrinter builds a printer from the OS locale list.
func systemPrinter() *message.Printer {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("avremu: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	return message.NewPrinter(message.MatchLanguage(locales...))
}

// SetLanguage forces messages to be rendered for tag.
func SetLanguage(tag language.Tag) {
	mutex.Lock()
	defer mutex.Unlock()

	printer = message.NewPrinter(tag)
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	mutex.Lock()
	if printer == nil {
		printer = systemPrinter()
	}
	p := printer
	mutex.Unlock()

	return p.Sprintf(key, args...)
}
