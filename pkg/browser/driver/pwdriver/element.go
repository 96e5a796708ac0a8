package pwdriver

import (
	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/browserd/pkg/browser/driver"
)

// element is a driver.Element backed by a Playwright element handle.
type element struct {
	handle playwright.ElementHandle
	page   playwright.Page
}

func (e *element) Click() error {
	return e.handle.Click()
}

func (e *element) DoubleClick() error {
	return e.handle.Dblclick()
}

func (e *element) RightClick() error {
	button := playwright.MouseButton("right")
	return e.handle.Click(playwright.ElementHandleClickOptions{Button: &button})
}

func (e *element) Hover() error {
	return e.handle.Hover()
}

func (e *element) Clear() error {
	return e.handle.Fill("")
}

func (e *element) SendKeys(text string) error {
	return e.handle.Type(text)
}

func (e *element) Press(key driver.Key) error {
	return e.handle.Press(string(key))
}

func (e *element) Text() (string, error) {
	return e.handle.InnerText()
}

func (e *element) IsVisible() (bool, error) {
	return e.handle.IsVisible()
}

func (e *element) IsEnabled() (bool, error) {
	return e.handle.IsEnabled()
}

func (e *element) SetFiles(path string) error {
	return e.handle.SetInputFiles([]string{path})
}
