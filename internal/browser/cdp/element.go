package cdp

import (
	"context"
	"fmt"

	cdproto "github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/xkilldash9x/ficwright/internal/browser"
)

type element struct {
	node   *cdproto.Node
	driver *Driver
}

var _ browser.Element = (*element)(nil)

func (e *element) ids() []cdproto.NodeID {
	return []cdproto.NodeID{e.node.NodeID}
}

func (e *element) FindElements(ctx context.Context, selector string) ([]browser.Element, error) {
	return e.driver.query(ctx, selector, chromedp.FromNode(e.node))
}

func (e *element) Click(ctx context.Context) error {
	return e.driver.run(ctx, chromedp.Click(e.ids(), chromedp.ByNodeID))
}

func (e *element) Clear(ctx context.Context) error {
	return e.driver.run(ctx, chromedp.Clear(e.ids(), chromedp.ByNodeID))
}

func (e *element) Focus(ctx context.Context) error {
	return e.driver.run(ctx, chromedp.Focus(e.ids(), chromedp.ByNodeID))
}

func (e *element) SendKeys(ctx context.Context, text string) error {
	return e.driver.run(ctx, chromedp.SendKeys(e.ids(), text, chromedp.ByNodeID))
}

func (e *element) PressKey(ctx context.Context, key browser.Key) error {
	code, err := keyName(key)
	if err != nil {
		return err
	}
	return e.driver.run(ctx, chromedp.SendKeys(e.ids(), code, chromedp.ByNodeID))
}

func (e *element) Property(ctx context.Context, name string) (string, error) {
	var v any
	if err := e.driver.run(ctx, chromedp.JavascriptAttribute(e.ids(), name, &v, chromedp.ByNodeID)); err != nil {
		return "", err
	}
	return browser.FormatProperty(v), nil
}

func (e *element) InnerHTML(ctx context.Context) (string, error) {
	var markup string
	err := e.driver.run(ctx, chromedp.InnerHTML(e.ids(), &markup, chromedp.ByNodeID))
	return markup, err
}

// Interactable reports whether the node is rendered and not disabled. A node
// without a box model is hidden.
func (e *element) Interactable(ctx context.Context) (bool, error) {
	var disabled any
	if err := e.driver.run(ctx, chromedp.JavascriptAttribute(e.ids(), "disabled", &disabled, chromedp.ByNodeID)); err != nil {
		return false, err
	}
	if disabled == true {
		return false, nil
	}
	rendered := true
	err := e.driver.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		if _, err := dom.GetBoxModel().WithNodeID(e.node.NodeID).Do(ctx); err != nil {
			rendered = false
		}
		return nil
	}))
	return rendered, err
}

func (e *element) ScrollIntoView(ctx context.Context) error {
	return e.driver.run(ctx, chromedp.ScrollIntoView(e.ids(), chromedp.ByNodeID))
}

func keyName(key browser.Key) (string, error) {
	switch key {
	case browser.KeyTab:
		return string(kb.Tab), nil
	case browser.KeyEnter:
		return string(kb.Enter), nil
	default:
		return "", fmt.Errorf("unsupported key %v", key)
	}
}
