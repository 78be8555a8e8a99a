package webdriver

import (
	"context"
	"fmt"

	"github.com/tebeka/selenium"

	"github.com/xkilldash9x/ficwright/internal/browser"
)

type element struct {
	we     selenium.WebElement
	driver *Driver
}

var _ browser.Element = (*element)(nil)

func (e *element) FindElements(ctx context.Context, selector string) ([]browser.Element, error) {
	var found []selenium.WebElement
	err := call(ctx, func() error {
		var err error
		found, err = e.we.FindElements(selenium.ByCSSSelector, selector)
		return err
	})
	if err != nil {
		return nil, err
	}
	return e.driver.wrap(found), nil
}

func (e *element) Click(ctx context.Context) error {
	return call(ctx, e.we.Click)
}

func (e *element) Clear(ctx context.Context) error {
	return call(ctx, e.we.Clear)
}

func (e *element) Focus(ctx context.Context) error {
	_, err := e.driver.script(ctx, focusScript, e.we)
	return err
}

func (e *element) SendKeys(ctx context.Context, text string) error {
	return call(ctx, func() error { return e.we.SendKeys(text) })
}

func (e *element) PressKey(ctx context.Context, key browser.Key) error {
	code, err := keyCode(key)
	if err != nil {
		return err
	}
	return call(ctx, func() error { return e.we.SendKeys(code) })
}

func (e *element) Property(ctx context.Context, name string) (string, error) {
	res, err := e.driver.script(ctx, propertyScript, e.we, name)
	if err != nil {
		return "", err
	}
	return browser.FormatProperty(res), nil
}

func (e *element) InnerHTML(ctx context.Context) (string, error) {
	res, err := e.driver.script(ctx, innerHTMLScript, e.we)
	if err != nil {
		return "", err
	}
	return browser.FormatProperty(res), nil
}

func (e *element) Interactable(ctx context.Context) (bool, error) {
	var displayed, enabled bool
	err := call(ctx, func() error {
		var err error
		if displayed, err = e.we.IsDisplayed(); err != nil || !displayed {
			return err
		}
		enabled, err = e.we.IsEnabled()
		return err
	})
	return displayed && enabled, err
}

func (e *element) ScrollIntoView(ctx context.Context) error {
	_, err := e.driver.script(ctx, scrollIntoViewScript, e.we)
	return err
}

func keyCode(key browser.Key) (string, error) {
	switch key {
	case browser.KeyTab:
		return selenium.TabKey, nil
	case browser.KeyEnter:
		return selenium.EnterKey, nil
	default:
		return "", fmt.Errorf("unsupported key %v", key)
	}
}
