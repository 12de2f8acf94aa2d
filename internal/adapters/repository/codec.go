package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lunchdesk/core/internal/domain/entities"
	"github.com/lunchdesk/core/internal/infrastructure/csvstore"
	"github.com/shopspring/decimal"
)

// ErrMalformedRow is returned by the strict decoders
var ErrMalformedRow = errors.New("malformed row")

// Column layouts of the collection files. The order is part of the file
// format and must not change.
var (
	LunchHeader   = []string{"id", "title", "imagen", "price", "tags"}
	OrderHeader   = []string{"id", "towerNum", "apto", "customer", "phoneNum", "payMethod", "lunch", "details", "time", "date", "orderState", "total"}
	ExpenseHeader = []string{"id", "kind", "title", "description", "amount", "time", "date"}
)

// EncodeLunch flattens a lunch into a row. Tags are stored as a JSON array.
func EncodeLunch(l *entities.Lunch) csvstore.Row {
	return csvstore.Row{
		"id":     l.ID,
		"title":  l.Title,
		"imagen": l.Imagen,
		"price":  formatNumber(l.Price),
		"tags":   mustJSON(nonNilTags(l.Tags)),
	}
}

// EncodeOrder flattens an order into a row. The total is written as is,
// callers settle it before encoding.
func EncodeOrder(o *entities.Order) csvstore.Row {
	items := make([]entities.OrderItem, len(o.Lunch))
	copy(items, o.Lunch)
	for i := range items {
		items[i].Tags = nonNilTags(items[i].Tags)
	}
	return csvstore.Row{
		"id":         o.ID,
		"towerNum":   o.TowerNum,
		"apto":       strconv.Itoa(o.Apto),
		"customer":   o.Customer,
		"phoneNum":   strconv.FormatInt(o.PhoneNum, 10),
		"payMethod":  mustJSON(o.PayMethod),
		"lunch":      mustJSON(items),
		"details":    o.Details,
		"time":       o.Time,
		"date":       o.Date,
		"orderState": string(o.OrderState),
		"total":      formatNumber(o.Total),
	}
}

// EncodeExpense flattens an expense into a row
func EncodeExpense(e *entities.Expense) csvstore.Row {
	return csvstore.Row{
		"id":          e.ID,
		"kind":        string(e.Kind),
		"title":       e.Title,
		"description": e.Description,
		"amount":      formatNumber(e.Amount),
		"time":        e.Time,
		"date":        e.Date,
	}
}

// DecodeLunch maps a row onto a lunch. Unparsable price reads as 0 and
// unparsable tags as an empty list.
func DecodeLunch(row csvstore.Row) *entities.Lunch {
	l, _ := decodeLunch(row, false)
	return l
}

// DecodeLunchStrict is DecodeLunch that fails on any unparsable column
func DecodeLunchStrict(row csvstore.Row) (*entities.Lunch, error) {
	return decodeLunch(row, true)
}

func decodeLunch(row csvstore.Row, strict bool) (*entities.Lunch, error) {
	d := decoder{row: row, strict: strict}
	l := &entities.Lunch{
		ID:     row["id"],
		Title:  row["title"],
		Imagen: row["imagen"],
		Price:  d.number("price"),
		Tags:   d.tags("tags"),
	}
	return l, d.err
}

// DecodeOrder maps a row onto an order. Unparsable numbers read as 0,
// unparsable nested JSON as empty values, and a total that is not a finite
// number is recomputed from the stored items. A recomputed total that
// overflows reads as 0.
func DecodeOrder(row csvstore.Row) *entities.Order {
	o, _ := decodeOrder(row, false)
	return o
}

// DecodeOrderStrict is DecodeOrder that fails on any unparsable column
func DecodeOrderStrict(row csvstore.Row) (*entities.Order, error) {
	return decodeOrder(row, true)
}

func decodeOrder(row csvstore.Row, strict bool) (*entities.Order, error) {
	d := decoder{row: row, strict: strict}
	o := &entities.Order{
		ID:         row["id"],
		TowerNum:   row["towerNum"],
		Apto:       int(d.integer("apto")),
		Customer:   row["customer"],
		PhoneNum:   d.integer("phoneNum"),
		PayMethod:  d.payMethod("payMethod"),
		Lunch:      d.items("lunch"),
		Details:    row["details"],
		Time:       row["time"],
		Date:       row["date"],
		OrderState: entities.OrderState(row["orderState"]),
	}
	if total, ok := parseNumber(row["total"]); ok {
		o.Total = total
	} else {
		if strings.TrimSpace(row["total"]) != "" {
			d.fail("total", row["total"])
		}
		o.Total = entities.ComputeTotal(o.Lunch)
		if !entities.IsFinite(o.Total) {
			d.fail("total", row["total"])
			o.Total = 0
		}
	}
	return o, d.err
}

// DecodeExpense maps a row onto an expense. An unparsable amount reads as 0.
func DecodeExpense(row csvstore.Row) *entities.Expense {
	e, _ := decodeExpense(row, false)
	return e
}

// DecodeExpenseStrict is DecodeExpense that fails on any unparsable column
func DecodeExpenseStrict(row csvstore.Row) (*entities.Expense, error) {
	return decodeExpense(row, true)
}

func decodeExpense(row csvstore.Row, strict bool) (*entities.Expense, error) {
	d := decoder{row: row, strict: strict}
	e := &entities.Expense{
		ID:          row["id"],
		Kind:        entities.ExpenseKind(row["kind"]),
		Title:       row["title"],
		Description: row["description"],
		Amount:      d.number("amount"),
		Time:        row["time"],
		Date:        row["date"],
	}
	return e, d.err
}

// decoder reads typed columns from a row. In strict mode the first column
// that does not parse is kept in err; empty columns are never an error.
type decoder struct {
	row    csvstore.Row
	strict bool
	err    error
}

func (d *decoder) fail(col, value string) {
	if d.strict && d.err == nil {
		d.err = fmt.Errorf("%w: column %s: %q", ErrMalformedRow, col, value)
	}
}

func (d *decoder) number(col string) float64 {
	v := d.row[col]
	f, ok := parseNumber(v)
	if !ok && strings.TrimSpace(v) != "" {
		d.fail(col, v)
	}
	return f
}

// integer parses an integer column. Values written with a fraction are
// truncated, which is how older files stored apartment and phone numbers.
func (d *decoder) integer(col string) int64 {
	v := strings.TrimSpace(d.row[col])
	if v == "" {
		return 0
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	if f, ok := parseNumber(v); ok && math.Abs(f) < math.MaxInt64 {
		return int64(f)
	}
	d.fail(col, v)
	return 0
}

func (d *decoder) tags(col string) []string {
	v := d.row[col]
	tags := []string{}
	if strings.TrimSpace(v) == "" {
		return tags
	}
	if err := json.Unmarshal([]byte(v), &tags); err != nil || tags == nil {
		if err != nil {
			d.fail(col, v)
		}
		return []string{}
	}
	return tags
}

func (d *decoder) payMethod(col string) entities.PayMethod {
	v := d.row[col]
	var pm entities.PayMethod
	if strings.TrimSpace(v) == "" {
		return pm
	}
	if err := json.Unmarshal([]byte(v), &pm); err != nil {
		d.fail(col, v)
		return entities.PayMethod{}
	}
	return pm
}

// items decodes the order lines. In lenient mode each line is read field by
// field so that numbers stored as text still count.
func (d *decoder) items(col string) []entities.OrderItem {
	v := d.row[col]
	if strings.TrimSpace(v) == "" {
		return []entities.OrderItem{}
	}

	if d.strict {
		var items []entities.OrderItem
		if err := json.Unmarshal([]byte(v), &items); err != nil {
			d.fail(col, v)
			return []entities.OrderItem{}
		}
		if items == nil {
			items = []entities.OrderItem{}
		}
		for i := range items {
			items[i].Tags = nonNilTags(items[i].Tags)
		}
		return items
	}

	var raw []map[string]interface{}
	if err := json.Unmarshal([]byte(v), &raw); err != nil {
		return []entities.OrderItem{}
	}
	items := make([]entities.OrderItem, 0, len(raw))
	for _, m := range raw {
		if m == nil {
			continue
		}
		items = append(items, looseItem(m))
	}
	return items
}

func looseItem(m map[string]interface{}) entities.OrderItem {
	it := entities.OrderItem{
		ID:       looseString(m["id"]),
		Title:    looseString(m["title"]),
		Imagen:   looseString(m["imagen"]),
		Price:    looseNumber(m["price"]),
		Quantity: int(looseNumber(m["quantity"])),
		Tags:     []string{},
	}
	if list, ok := m["tags"].([]interface{}); ok {
		for _, t := range list {
			if s, ok := t.(string); ok {
				it.Tags = append(it.Tags, s)
			}
		}
	}
	return it
}

func looseString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return formatNumber(x)
	default:
		return ""
	}
}

func looseNumber(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		f, _ := parseNumber(x)
		return f
	case bool:
		if x {
			return 1
		}
	}
	return 0
}

// parseNumber accepts finite decimal numbers only
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// formatNumber writes the shortest decimal text that reads back to f.
// NaN and infinities are written as an empty column.
func formatNumber(f float64) string {
	if !entities.IsFinite(f) {
		return ""
	}
	return decimal.NewFromFloat(f).String()
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func mustJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		// only plain structs, strings and numbers are marshalled here
		panic(err)
	}
	return string(b)
}
