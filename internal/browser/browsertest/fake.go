// Package browsertest provides an in-memory browser.Driver backed by a parsed
// HTML document. Clicks, typing and Tab commits mutate the document the way
// the real form's scripts do, and every mutation is journaled so tests can
// assert on the exact sequence of UI actions.
package browsertest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/xkilldash9x/ficwright/internal/browser"
)

// ErrStaleElement is returned for handles obtained before the last page load.
var ErrStaleElement = errors.New("stale element reference")

// ErrNotInteractable is returned when clicking a disabled or hidden control.
var ErrNotInteractable = errors.New("element not interactable")

// Event is one journaled UI action.
//
// Kinds: navigate, refresh, cookie, quit, click, toggle, select, add, remove,
// clear, focus, type, key.
type Event struct {
	Kind   string
	Target string
	Text   string
}

// Fake is an in-memory Driver. It is safe for concurrent use.
type Fake struct {
	mu       sync.Mutex
	pages    map[string]string
	source   string
	doc      *goquery.Document
	gen      int
	location string
	cookies  []browser.Cookie
	events   []Event
	failures map[string]error
	hooks    map[string]func(*Fake)
	quits    int
}

var _ browser.Driver = (*Fake)(nil)

// New returns a fake whose site root serves page.
func New(page string) *Fake {
	f := &Fake{
		pages:    map[string]string{"/": page},
		failures: make(map[string]error),
		hooks:    make(map[string]func(*Fake)),
	}
	if err := f.load("https://archive.test/", page); err != nil {
		panic(err)
	}
	return f
}

// NewWorkForm returns a fake serving the home page at "/" and the new work
// form at "/works/new", already showing the form.
func NewWorkForm() *Fake {
	f := New(HomeHTML)
	f.SetPage("/works/new", WorkFormHTML)
	if err := f.load("https://archive.test/works/new", WorkFormHTML); err != nil {
		panic(err)
	}
	return f
}

// SetPage registers the markup served for a path.
func (f *Fake) SetPage(path, page string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[path] = page
}

// OnClick registers fn to run after a click on the element whose id or name is key.
func (f *Fake) OnClick(key string, fn func(*Fake)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hooks[key] = fn
}

// Fail makes every later operation of the given kind return err. A nil err clears it.
// Operation kinds: navigate, refresh, currenturl, find, cookies, addcookie, quit,
// click, clear, focus, sendkeys, presskey, property, innerhtml, interactable, scroll.
func (f *Fake) Fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, op)
		return
	}
	f.failures[op] = err
}

// Events returns a copy of the journal.
func (f *Fake) Events() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Event(nil), f.events...)
}

// Count returns how many journaled events have the given kind.
func (f *Fake) Count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// ResetEvents clears the journal.
func (f *Fake) ResetEvents() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = nil
}

// Quits reports how many times Quit was called.
func (f *Fake) Quits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.quits
}

// Location returns the current URL without going through a session.
func (f *Fake) Location() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.location
}

// Checked reports whether the first element matching selector is checked.
func (f *Fake) Checked(selector string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.doc.Find(selector).First()
	_, ok := n.Attr("checked")
	return n.Length() > 0 && ok
}

// SetChecked arranges the checked state of every element matching selector.
func (f *Fake) SetChecked(selector string, checked bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.doc.Find(selector).Nodes {
		setBool(n, "checked", checked)
		f.applyToggle(n, checked)
	}
}

// Hidden reports whether the element matching selector, or an ancestor, is hidden.
func (f *Fake) Hidden(selector string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.doc.Find(selector).First()
	if n.Length() == 0 {
		return false
	}
	return hiddenOrDisabled(n.Nodes[0], false)
}

// Value returns the current value of the first element matching selector.
func (f *Fake) Value(selector string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.doc.Find(selector).First()
	if n.Length() == 0 {
		return ""
	}
	return valueOf(n.Nodes[0])
}

// Selected returns the value of the selected option inside the select matching selector.
func (f *Fake) Selected(selector string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.doc.Find(selector).Find("option").Nodes {
		if hasAttr(n, "selected") {
			return valueOf(n)
		}
	}
	return ""
}

// Chips lists the committed entries of the autocomplete list matching selector.
func (f *Fake) Chips(selector string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for _, n := range f.doc.Find(selector).Find("li.added.tag").Nodes {
		names = append(names, chipName(n))
	}
	return names
}

// AddChips arranges committed entries on the autocomplete list matching selector.
func (f *Fake) AddChips(selector string, names ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	input := f.doc.Find(selector).Find("li.input").First()
	if input.Length() == 0 {
		return
	}
	for _, name := range names {
		insertChip(input.Nodes[0], name)
	}
}

// CookieJar returns the cookies currently installed.
func (f *Fake) CookieJar() []browser.Cookie {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]browser.Cookie(nil), f.cookies...)
}

// load replaces the document. Callers hold f.mu or own f exclusively.
func (f *Fake) load(location, page string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return fmt.Errorf("failed to parse page: %w", err)
	}
	f.doc = doc
	f.source = page
	f.location = location
	f.gen++
	return nil
}

func (f *Fake) begin(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.failures[op]
}

func (f *Fake) record(kind, target, text string) {
	f.events = append(f.events, Event{Kind: kind, Target: target, Text: text})
}

func (f *Fake) Navigate(ctx context.Context, target string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "navigate"); err != nil {
		return err
	}
	u, err := url.Parse(target)
	if err != nil {
		return err
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	page, ok := f.pages[path]
	if !ok {
		page = "<html><head></head><body></body></html>"
	}
	f.record("navigate", target, "")
	return f.load(target, page)
}

func (f *Fake) Refresh(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "refresh"); err != nil {
		return err
	}
	f.record("refresh", f.location, "")
	return f.load(f.location, f.source)
}

func (f *Fake) CurrentURL(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "currenturl"); err != nil {
		return "", err
	}
	return f.location, nil
}

func (f *Fake) FindElements(ctx context.Context, selector string) ([]browser.Element, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "find"); err != nil {
		return nil, err
	}
	return f.wrap(f.doc.Find(selector).Nodes), nil
}

func (f *Fake) Cookies(ctx context.Context) ([]browser.Cookie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "cookies"); err != nil {
		return nil, err
	}
	return append([]browser.Cookie(nil), f.cookies...), nil
}

func (f *Fake) AddCookie(ctx context.Context, c browser.Cookie) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(ctx, "addcookie"); err != nil {
		return err
	}
	f.record("cookie", c.Name, c.Value)
	for i := range f.cookies {
		if f.cookies[i].Name == c.Name {
			f.cookies[i] = c
			return nil
		}
	}
	f.cookies = append(f.cookies, c)
	return nil
}

func (f *Fake) Quit(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quits++
	f.record("quit", "", "")
	return f.failures["quit"]
}

func (f *Fake) wrap(nodes []*html.Node) []browser.Element {
	elements := make([]browser.Element, 0, len(nodes))
	for _, n := range nodes {
		elements = append(elements, &element{fake: f, node: n, gen: f.gen})
	}
	return elements
}

// applyToggle reveals or hides the block a gate checkbox controls.
func (f *Fake) applyToggle(n *html.Node, checked bool) {
	id := attr(n, "data-toggles")
	if id == "" {
		return
	}
	target := f.doc.Find("#" + id).First()
	if target.Length() == 0 {
		return
	}
	setBool(target.Nodes[0], "hidden", !checked)
}

type element struct {
	fake *Fake
	node *html.Node
	gen  int
}

var _ browser.Element = (*element)(nil)

func (e *element) begin(ctx context.Context, op string) error {
	if err := e.fake.begin(ctx, op); err != nil {
		return err
	}
	if e.gen != e.fake.gen {
		return ErrStaleElement
	}
	return nil
}

func (e *element) FindElements(ctx context.Context, selector string) ([]browser.Element, error) {
	e.fake.mu.Lock()
	defer e.fake.mu.Unlock()
	if err := e.begin(ctx, "find"); err != nil {
		return nil, err
	}
	return e.fake.wrap(goquery.NewDocumentFromNode(e.node).Find(selector).Nodes), nil
}

func (e *element) Click(ctx context.Context) error {
	e.fake.mu.Lock()
	hook, err := e.click(ctx)
	e.fake.mu.Unlock()
	if err == nil && hook != nil {
		hook(e.fake)
	}
	return err
}

func (e *element) click(ctx context.Context) (func(*Fake), error) {
	if err := e.begin(ctx, "click"); err != nil {
		return nil, err
	}
	n := e.node
	if hiddenOrDisabled(n, true) {
		return nil, fmt.Errorf("%w: %s", ErrNotInteractable, label(n))
	}

	switch {
	case n.DataAtom == atom.Input && attr(n, "type") == "checkbox":
		checked := !hasAttr(n, "checked")
		setBool(n, "checked", checked)
		e.fake.applyToggle(n, checked)
		e.fake.record("toggle", label(n), fmt.Sprint(checked))
	case n.DataAtom == atom.Option:
		if sel := closest(n, atom.Select); sel != nil {
			for _, opt := range goquery.NewDocumentFromNode(sel).Find("option").Nodes {
				setBool(opt, "selected", false)
			}
		}
		setBool(n, "selected", true)
		e.fake.record("select", valueOf(n), "")
	case n.DataAtom == atom.A && isChipDelete(n):
		chip := n.Parent.Parent
		e.fake.record("remove", chipName(chip), "")
		chip.Parent.RemoveChild(chip)
	default:
		e.fake.record("click", label(n), "")
	}

	for _, key := range []string{attr(n, "id"), attr(n, "name")} {
		if hook, ok := e.fake.hooks[key]; ok && key != "" {
			return hook, nil
		}
	}
	return nil, nil
}

func (e *element) Clear(ctx context.Context) error {
	e.fake.mu.Lock()
	defer e.fake.mu.Unlock()
	if err := e.begin(ctx, "clear"); err != nil {
		return err
	}
	if hiddenOrDisabled(e.node, true) {
		return fmt.Errorf("%w: %s", ErrNotInteractable, label(e.node))
	}
	setAttr(e.node, "value", "")
	e.fake.record("clear", label(e.node), "")
	return nil
}

func (e *element) Focus(ctx context.Context) error {
	e.fake.mu.Lock()
	defer e.fake.mu.Unlock()
	if err := e.begin(ctx, "focus"); err != nil {
		return err
	}
	e.fake.record("focus", label(e.node), "")
	return nil
}

func (e *element) SendKeys(ctx context.Context, text string) error {
	e.fake.mu.Lock()
	defer e.fake.mu.Unlock()
	if err := e.begin(ctx, "sendkeys"); err != nil {
		return err
	}
	if hiddenOrDisabled(e.node, true) {
		return fmt.Errorf("%w: %s", ErrNotInteractable, label(e.node))
	}
	setAttr(e.node, "value", valueOf(e.node)+text)
	e.fake.record("type", label(e.node), text)
	return nil
}

func (e *element) PressKey(ctx context.Context, key browser.Key) error {
	e.fake.mu.Lock()
	defer e.fake.mu.Unlock()
	if err := e.begin(ctx, "presskey"); err != nil {
		return err
	}
	li := e.node.Parent
	if key == browser.KeyTab && li != nil && li.DataAtom == atom.Li && hasClass(li, "input") {
		name := strings.TrimSpace(valueOf(e.node))
		if name != "" {
			insertChip(li, name)
			setAttr(e.node, "value", "")
			e.fake.record("add", name, "")
			return nil
		}
	}
	e.fake.record("key", label(e.node), key.String())
	return nil
}

func (e *element) Property(ctx context.Context, name string) (string, error) {
	e.fake.mu.Lock()
	defer e.fake.mu.Unlock()
	if err := e.begin(ctx, "property"); err != nil {
		return "", err
	}
	switch name {
	case "checked", "selected", "disabled", "hidden":
		return fmt.Sprint(hasAttr(e.node, name)), nil
	case "value":
		return valueOf(e.node), nil
	default:
		return attr(e.node, name), nil
	}
}

func (e *element) InnerHTML(ctx context.Context) (string, error) {
	e.fake.mu.Lock()
	defer e.fake.mu.Unlock()
	if err := e.begin(ctx, "innerhtml"); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func (e *element) Interactable(ctx context.Context) (bool, error) {
	e.fake.mu.Lock()
	defer e.fake.mu.Unlock()
	if err := e.begin(ctx, "interactable"); err != nil {
		return false, err
	}
	return !hiddenOrDisabled(e.node, true), nil
}

func (e *element) ScrollIntoView(ctx context.Context) error {
	e.fake.mu.Lock()
	defer e.fake.mu.Unlock()
	return e.begin(ctx, "scroll")
}

// -- DOM helpers --

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

func setBool(n *html.Node, key string, on bool) {
	if on {
		setAttr(n, key, key)
		return
	}
	removeAttr(n, key)
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func closest(n *html.Node, a atom.Atom) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.DataAtom == a {
			return p
		}
	}
	return nil
}

// hiddenOrDisabled reports whether n or an ancestor is hidden, and with
// checkDisabled also whether n itself is disabled.
func hiddenOrDisabled(n *html.Node, checkDisabled bool) bool {
	if checkDisabled && hasAttr(n, "disabled") {
		return true
	}
	for p := n; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && hasAttr(p, "hidden") {
			return true
		}
	}
	return false
}

func valueOf(n *html.Node) string {
	if hasAttr(n, "value") {
		return attr(n, "value")
	}
	if n.DataAtom == atom.Option || n.DataAtom == atom.Textarea {
		return textOf(n)
	}
	return ""
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

func label(n *html.Node) string {
	for _, key := range []string{"id", "name", "value"} {
		if v := attr(n, key); v != "" {
			return v
		}
	}
	return n.Data
}

func isChipDelete(a *html.Node) bool {
	span := a.Parent
	if span == nil || span.DataAtom != atom.Span || !hasClass(span, "delete") {
		return false
	}
	li := span.Parent
	return li != nil && li.Parent != nil && hasClass(li, "added") && hasClass(li, "tag")
}

func chipName(li *html.Node) string {
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			return strings.TrimSpace(c.Data)
		}
	}
	return ""
}

// insertChip adds a committed entry in front of the list's input item,
// rendered as `Name <span class="delete"><a href="#">×</a></span>`.
func insertChip(inputItem *html.Node, name string) {
	li := &html.Node{Type: html.ElementNode, Data: "li", DataAtom: atom.Li,
		Attr: []html.Attribute{{Key: "class", Val: "added tag"}}}
	li.AppendChild(&html.Node{Type: html.TextNode, Data: name + " "})
	span := &html.Node{Type: html.ElementNode, Data: "span", DataAtom: atom.Span,
		Attr: []html.Attribute{{Key: "class", Val: "delete"}}}
	a := &html.Node{Type: html.ElementNode, Data: "a", DataAtom: atom.A,
		Attr: []html.Attribute{{Key: "href", Val: "#"}}}
	a.AppendChild(&html.Node{Type: html.TextNode, Data: "×"})
	span.AppendChild(a)
	li.AppendChild(span)
	inputItem.Parent.InsertBefore(li, inputItem)
}
