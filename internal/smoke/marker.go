package smoke

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Kargones/rb-ci/internal/constants"
)

// ErrorMarkerSelector - элемент страницы исключения ASP.NET Core в режиме разработки.
const ErrorMarkerSelector = constants.ErrorMarkerSelector

// FindMarker ищет маркер исключения и возвращает текст первого найденного элемента.
func FindMarker(html string) (text string, found bool, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false, fmt.Errorf("parse document: %w", err)
	}
	sel := doc.Find(ErrorMarkerSelector).First()
	if sel.Length() == 0 {
		return "", false, nil
	}
	return strings.TrimSpace(sel.Text()), true, nil
}
