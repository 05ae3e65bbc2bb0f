// Package nfe lee facturas electrónicas en formato NF-e (con o sin namespace, UTF-8 o ISO-8859-1).
package nfe

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/jhoicas/Suministros-api/internal/application/reconciliation"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var _ reconciliation.DocumentParser = (*Parser)(nil)

// Parser implementación de reconciliation.DocumentParser sobre etree.
type Parser struct{}

// NewParser construye el parser.
func NewParser() *Parser { return &Parser{} }

// Parse lee el XML y extrae cabecera, emisor, totales y líneas (det/prod).
// Las rutas sin prefijo coinciden con cualquier namespace.
func (p *Parser) Parse(r io.Reader) (*reconciliation.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("%w: XML ilegible: %v", domain.ErrValidation, err)
	}
	inf := doc.FindElement("//infNFe")
	if inf == nil {
		return nil, domain.Invalid("xml", "no contiene infNFe")
	}

	out := &reconciliation.Document{
		Number:            text(inf, "ide/nNF"),
		Series:            text(inf, "ide/serie"),
		SupplierTaxID:     digits(firstText(inf, "emit/CNPJ", "emit/CPF")),
		SupplierName:      text(inf, "emit/xNome"),
		SupplierTradeName: text(inf, "emit/xFant"),
		SupplierEmail:     text(inf, "emit/email"),
		SupplierPhone:     text(inf, "emit/enderEmit/fone"),
	}
	if out.Number == "" {
		return nil, domain.Invalid("nNF", "número de factura ausente")
	}
	if out.SupplierTaxID == "" {
		return nil, domain.Invalid("emit", "identificación fiscal del emisor ausente")
	}
	issue, err := parseDate(firstText(inf, "ide/dhEmi", "ide/dEmi"))
	if err != nil {
		return nil, domain.Invalid("dhEmi", err.Error())
	}
	out.IssueDate = issue
	if out.DeclaredTotal, err = number(inf, "total/ICMSTot/vNF", true); err != nil {
		return nil, err
	}

	for i, det := range inf.FindElements("det") {
		prod := det.FindElement("prod")
		if prod == nil {
			return nil, domain.Invalid(fmt.Sprintf("det[%d]", i+1), "sin prod")
		}
		line := i + 1
		if n, err := strconv.Atoi(det.SelectAttrValue("nItem", "")); err == nil && n > 0 {
			line = n
		}
		it := reconciliation.DocumentItem{
			Line:         line,
			SupplierCode: text(prod, "cProd"),
			Description:  text(prod, "xProd"),
			TaxCode:      text(prod, "NCM"),
			UnitMeasure:  strings.ToUpper(text(prod, "uCom")),
		}
		if it.Quantity, err = number(prod, "qCom", false); err != nil {
			return nil, err
		}
		if !it.Quantity.IsPositive() {
			return nil, domain.Invalid(fmt.Sprintf("det[%d].qCom", line), "debe ser mayor que cero")
		}
		if it.UnitValue, err = number(prod, "vUnCom", false); err != nil {
			return nil, err
		}
		if it.TotalValue, err = number(prod, "vProd", true); err != nil {
			return nil, err
		}
		if it.TotalValue.IsZero() {
			it.TotalValue = it.Quantity.Mul(it.UnitValue).Round(2)
		}
		out.Items = append(out.Items, it)
	}
	if len(out.Items) == 0 {
		return nil, domain.Invalid("det", "la factura no tiene ítems")
	}
	return out, nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "ISO-8859-1", "ISO8859-1", "LATIN1":
		return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
	case "WINDOWS-1252", "CP1252":
		return transform.NewReader(input, charmap.Windows1252.NewDecoder()), nil
	case "UTF-8", "":
		return input, nil
	}
	return nil, fmt.Errorf("codificación no soportada: %s", label)
}

func text(e *etree.Element, path string) string {
	if el := e.FindElement(path); el != nil {
		return strings.TrimSpace(el.Text())
	}
	return ""
}

func firstText(e *etree.Element, paths ...string) string {
	for _, p := range paths {
		if v := text(e, p); v != "" {
			return v
		}
	}
	return ""
}

func number(e *etree.Element, path string, optional bool) (decimal.Decimal, error) {
	raw := text(e, path)
	if raw == "" {
		if optional {
			return decimal.Zero, nil
		}
		return decimal.Zero, domain.Invalid(path, "valor ausente")
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, domain.Invalid(path, fmt.Sprintf("número inválido %q", raw))
	}
	return v, nil
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("fecha de emisión ausente")
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("fecha inválida %q", raw)
}
