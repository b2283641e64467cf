package parser

import (
	"fmt"
	"strings"

	"github.com/ukaji3/xlreport-go/pkg/xlreport/models"
)

func (b *builder) parseProvider(n *Node) error {
	var (
		p   *models.DataProvider
		err error
	)
	switch n.Name {
	case "filtered-data-provider":
		p, err = parseFilteredProvider(n)
	case "list-data-provider":
		p, err = parseListProvider(n)
	case "sql-data-provider":
		p, err = parseSQLProvider(n)
	case "class-data-provider":
		p, err = parseClassProvider(n)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownElement, n.Name)
	}
	if err != nil {
		return err
	}

	if _, exists := b.report.Providers[p.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateProvider, p.ID)
	}
	b.report.Providers[p.ID] = p
	b.log.WithField("provider", p.ID).Debug("data provider registered")
	return nil
}

func parseFilteredProvider(n *Node) (*models.DataProvider, error) {
	var attrs filteredProviderAttrs
	if err := bindAttrs(n, &attrs); err != nil {
		return nil, err
	}
	if len(n.Children) > 0 {
		c := n.Children[0]
		return nil, elementError(c, fmt.Errorf("%w: %s", ErrUnknownElement, c.Name))
	}
	return &models.DataProvider{
		ID:        attrs.ID,
		Kind:      models.ProviderFiltered,
		Predicate: models.Expression(attrs.Predicate),
	}, nil
}

func parseListProvider(n *Node) (*models.DataProvider, error) {
	var attrs listProviderAttrs
	if err := bindAttrs(n, &attrs); err != nil {
		return nil, err
	}
	p := &models.DataProvider{
		ID:   attrs.ID,
		Kind: models.ProviderList,
		Data: models.Expression(attrs.Data),
	}
	return p, parseProviderChildren(n, p, false)
}

func parseSQLProvider(n *Node) (*models.DataProvider, error) {
	var attrs sqlProviderAttrs
	if err := bindAttrs(n, &attrs); err != nil {
		return nil, err
	}
	p := &models.DataProvider{
		ID:         attrs.ID,
		Kind:       models.ProviderSQL,
		DataSource: models.Expression(attrs.DataSource),
		Processor:  models.Expression(attrs.Processor),
	}
	return p, parseProviderChildren(n, p, true)
}

func parseClassProvider(n *Node) (*models.DataProvider, error) {
	var attrs classProviderAttrs
	if err := bindAttrs(n, &attrs); err != nil {
		return nil, err
	}
	p := &models.DataProvider{
		ID:     attrs.ID,
		Kind:   models.ProviderClass,
		Object: models.Expression(attrs.Object),
		Method: models.Expression(attrs.Method),
	}
	return p, parseProviderChildren(n, p, false)
}

// parseProviderChildren reads <filter>, <params> and <param> children, plus
// <sql> and <sql-ref> when withSQL is set.
func parseProviderChildren(n *Node, p *models.DataProvider, withSQL bool) error {
	for _, c := range n.Children {
		text := models.Expression(strings.TrimSpace(c.Text))
		switch {
		case c.Name == "filter":
			p.Filter = text
		case c.Name == "params":
			p.ParamsMap = text
		case c.Name == "param":
			var attrs paramAttrs
			if err := bindAttrs(c, &attrs); err != nil {
				return elementError(c, err)
			}
			p.Params = append(p.Params, models.Param{
				Name:  models.Expression(attrs.Name),
				Value: models.Expression(attrs.Value),
			})
		case withSQL && c.Name == "sql":
			p.SQL = text
		case withSQL && c.Name == "sql-ref":
			p.SQLRef = text
		default:
			return elementError(c, fmt.Errorf("%w: %s", ErrUnknownElement, c.Name))
		}
	}
	return nil
}
