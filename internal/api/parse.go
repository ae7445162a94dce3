package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/smokyabdulrahman/jadwal-shalat/internal/schedule"
)

// provinceSelectID is the id of the province <select> on the schedule page.
const provinceSelectID = "search_prov"

// parseProvinces extracts the province options from the schedule page.
func parseProvinces(page []byte) ([]option, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("%w: schedule page: %w", ErrParse, err)
	}

	sel := findElement(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Select && attr(n, "id") == provinceSelectID
	})
	if sel == nil {
		return nil, fmt.Errorf("%w: no select#%s on schedule page", ErrParse, provinceSelectID)
	}

	opts, err := collectOptions(sel)
	if err != nil {
		return nil, err
	}
	if len(opts) == 0 {
		return nil, fmt.Errorf("%w: select#%s has no options", ErrParse, provinceSelectID)
	}
	return opts, nil
}

// parseOptions extracts every option from an HTML fragment, such as the
// regency list returned by /ajax/getKabkoshalat.
func parseOptions(fragment []byte) ([]option, error) {
	doc, err := html.Parse(bytes.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("%w: options: %w", ErrParse, err)
	}
	return collectOptions(doc)
}

// collectOptions returns the options under n in document order. Options
// without a value are placeholders ("Pilih ...") and are skipped.
//
// Labels are the option's inner markup, untrimmed and with entities left
// escaped, so names stay byte-identical to catalogs cached by earlier
// releases. Lookups match these names exactly.
func collectOptions(n *html.Node) ([]option, error) {
	var out []option
	var walk func(*html.Node) error
	walk = func(n *html.Node) error {
		if n.Type == html.ElementNode && n.DataAtom == atom.Option {
			value := attr(n, "value")
			if strings.TrimSpace(value) == "" {
				return nil
			}
			label, err := innerHTML(n)
			if err != nil {
				return err
			}
			out = append(out, option{Value: value, Label: label})
			return nil
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(n); err != nil {
		return nil, fmt.Errorf("%w: option label: %w", ErrParse, err)
	}
	return out, nil
}

func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func innerHTML(n *html.Node) (string, error) {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// parseMonthResponse unwraps the "data" member of a month response.
func parseMonthResponse(body []byte) (schedule.Month, error) {
	var resp monthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: schedule response: %w", ErrParse, err)
	}
	if len(resp.Data) == 0 {
		msg := resp.Message
		if msg == "" {
			msg = "missing data"
		}
		return nil, fmt.Errorf("%w: schedule response: %s", ErrParse, msg)
	}

	m, err := schedule.ParseMonth(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return m, nil
}
