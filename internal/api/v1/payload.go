package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// ErrPayloadMismatch is returned when a payload variant does not belong to the event kind.
var ErrPayloadMismatch = errors.New("payload does not match event kind")

// Payload is the per-kind data carried by an event.
// Only the variants declared in this package implement it.
type Payload interface {
	// Fields flattens the payload into the stored data map.
	Fields() Data
	isPayload()
}

// StoreRef identifies the storefront an interaction happened on.
type StoreRef struct {
	StoreName      string `json:"storeName,omitempty"`
	StoreCustomURL string `json:"storeCustomURL,omitempty"`
}

// CategoryRef identifies a node of the three-level category tree.
type CategoryRef struct {
	CategoryID       string `json:"categoryId,omitempty"`
	CategoryName     string `json:"categoryName,omitempty"`
	MainCategoryID   string `json:"mainCategoryId,omitempty"`
	MainCategoryName string `json:"mainCategoryName,omitempty"`
	SubCategory1ID   string `json:"subCategory1Id,omitempty"`
	SubCategory1Name string `json:"subCategory1Name,omitempty"`
	SubCategory2ID   string `json:"subCategory2Id,omitempty"`
	SubCategory2Name string `json:"subCategory2Name,omitempty"`
}

// ProductPayload is carried by product views, clicks, highlighted views and
// clicks, and order button clicks.
type ProductPayload struct {
	ProductID          string   `json:"productId"`
	ProductName        string   `json:"productName,omitempty"`
	ProductDescription *string  `json:"productDescription,omitempty"`
	ProductPrice       *Price   `json:"productPrice,omitempty"`
	ProductCurrency    *string  `json:"productCurrency,omitempty"`
	ProductShowPrice   *bool    `json:"productShowPrice,omitempty"`
	ProductHighlighted *bool    `json:"productHighlighted,omitempty"`
	ProductImageCount  *int     `json:"productImageCount,omitempty"`
	LinkType           string   `json:"linkType,omitempty"`
	CustomLink         string   `json:"customLink,omitempty"`
	CategoryRef
	StoreRef

	// nulls lists the fields the client sent as an explicit null.
	nulls []string
}

// UnmarshalJSON decodes the payload and remembers explicit nulls.
func (p *ProductPayload) UnmarshalJSON(b []byte) error {
	type plain ProductPayload
	var decoded plain
	if err := json.Unmarshal(b, &decoded); err != nil {
		return err
	}
	nulls, err := explicitNulls(b, reflect.TypeOf(decoded))
	if err != nil {
		return err
	}
	*p = ProductPayload(decoded)
	p.nulls = nulls
	return nil
}

// Price is a product price as the storefront sends it: a number or a
// formatted string.
type Price struct {
	raw json.RawMessage
}

// NumberPrice returns a numeric price.
func NumberPrice(v float64) Price {
	return Price{raw: json.RawMessage(strconv.FormatFloat(v, 'f', -1, 64))}
}

// TextPrice returns a price sent as text.
func TextPrice(s string) Price {
	raw, _ := json.Marshal(s)
	return Price{raw: raw}
}

// Float64 returns the numeric value. Text prices are parsed.
func (p Price) Float64() (float64, bool) {
	var v interface{}
	if err := json.Unmarshal(p.raw, &v); err != nil {
		return 0, false
	}
	switch typed := v.(type) {
	case float64:
		return typed, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		return f, err == nil
	}
	return 0, false
}

func (p Price) MarshalJSON() ([]byte, error) {
	if len(p.raw) == 0 {
		return []byte("null"), nil
	}
	return p.raw, nil
}

func (p *Price) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v.(type) {
	case float64, string:
		p.raw = append(json.RawMessage(nil), b...)
		return nil
	case nil:
		p.raw = nil
		return nil
	}
	return fmt.Errorf("productPrice must be a number or a string, got %s", b)
}

// StoreVisitPayload is carried by store_visit.
type StoreVisitPayload struct {
	PagePath  string `json:"pagePath,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	StoreRef
}

// ActionButtonPayload is carried by action_button_click.
type ActionButtonPayload struct {
	ButtonTitle string `json:"buttonTitle,omitempty"`
	ButtonColor string `json:"buttonColor,omitempty"`
	CustomLink  string `json:"customLink,omitempty"`
	StoreRef
}

// CategoryFilterPayload is carried by category_filter.
type CategoryFilterPayload struct {
	CategoryRef
	StoreRef
}

// SearchQueryPayload is carried by search_query.
type SearchQueryPayload struct {
	SearchQuery string `json:"searchQuery"`
	StoreRef
}

// GalleryNavigationPayload is carried by image_gallery_navigation.
type GalleryNavigationPayload struct {
	ProductID   string `json:"productId,omitempty"`
	ProductName string `json:"productName,omitempty"`
	ImageIndex  int    `json:"imageIndex"`
	TotalImages int    `json:"totalImages"`
}

// PriceTogglePayload is carried by price_visibility_toggle.
type PriceTogglePayload struct {
	ProductID        string `json:"productId,omitempty"`
	ProductName      string `json:"productName,omitempty"`
	ProductShowPrice bool   `json:"productShowPrice"`
}

// LinkTypePayload is carried by link_type_click.
type LinkTypePayload struct {
	LinkType    string `json:"linkType"`
	CustomLink  string `json:"customLink,omitempty"`
	ProductID   string `json:"productId,omitempty"`
	ProductName string `json:"productName,omitempty"`
	StoreRef
}

// RawPayload carries untyped data for any kind. Values may be Missing.
type RawPayload Data

// Fields flattens the payload. Fields sent as an explicit null are kept as nil.
func (p ProductPayload) Fields() Data {
	d := toData(p)
	for _, key := range p.nulls {
		if _, ok := d[key]; !ok {
			d[key] = nil
		}
	}
	return d
}

func (p StoreVisitPayload) Fields() Data        { return toData(p) }
func (p ActionButtonPayload) Fields() Data      { return toData(p) }
func (p CategoryFilterPayload) Fields() Data    { return toData(p) }
func (p SearchQueryPayload) Fields() Data       { return toData(p) }
func (p GalleryNavigationPayload) Fields() Data { return toData(p) }
func (p PriceTogglePayload) Fields() Data       { return toData(p) }
func (p LinkTypePayload) Fields() Data          { return toData(p) }

// Fields returns the raw map unchanged; sanitizing happens in the recorder.
func (p RawPayload) Fields() Data { return Data(p) }

func (ProductPayload) isPayload()           {}
func (StoreVisitPayload) isPayload()        {}
func (ActionButtonPayload) isPayload()      {}
func (CategoryFilterPayload) isPayload()    {}
func (SearchQueryPayload) isPayload()       {}
func (GalleryNavigationPayload) isPayload() {}
func (PriceTogglePayload) isPayload()       {}
func (LinkTypePayload) isPayload()          {}
func (RawPayload) isPayload()               {}

// Accepts reports whether p is a valid payload shape for k.
// RawPayload and a nil payload are accepted for every kind.
func (k EventKind) Accepts(p Payload) bool {
	switch p.(type) {
	case nil, RawPayload:
		return k.Valid()
	case ProductPayload:
		switch k {
		case KindProductView, KindProductClick, KindHighlightedProductView,
			KindHighlightedProductClick, KindOrderButtonClick:
			return true
		}
		return false
	case StoreVisitPayload:
		return k == KindStoreVisit
	case ActionButtonPayload:
		return k == KindActionButtonClick
	case CategoryFilterPayload:
		return k == KindCategoryFilter
	case SearchQueryPayload:
		return k == KindSearchQuery
	case GalleryNavigationPayload:
		return k == KindImageGalleryNavigation
	case PriceTogglePayload:
		return k == KindPriceVisibilityToggle
	case LinkTypePayload:
		return k == KindLinkTypeClick
	default:
		return false
	}
}

// DecodePayload decodes a wire payload into the variant for k.
// An empty or null body yields the zero variant.
func DecodePayload(k EventKind, raw json.RawMessage) (Payload, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("unknown event kind %q", k)
	}
	empty := len(raw) == 0 || string(raw) == "null"

	var err error
	switch k {
	case KindProductView, KindProductClick, KindHighlightedProductView,
		KindHighlightedProductClick, KindOrderButtonClick:
		var p ProductPayload
		if !empty {
			err = json.Unmarshal(raw, &p)
		}
		if err == nil && p.ProductID == "" {
			err = fmt.Errorf("%w: %s requires productId", ErrPayloadMismatch, k)
		}
		return p, wrapDecode(k, err)
	case KindStoreVisit:
		var p StoreVisitPayload
		if !empty {
			err = json.Unmarshal(raw, &p)
		}
		return p, wrapDecode(k, err)
	case KindActionButtonClick:
		var p ActionButtonPayload
		if !empty {
			err = json.Unmarshal(raw, &p)
		}
		return p, wrapDecode(k, err)
	case KindCategoryFilter:
		var p CategoryFilterPayload
		if !empty {
			err = json.Unmarshal(raw, &p)
		}
		return p, wrapDecode(k, err)
	case KindSearchQuery:
		var p SearchQueryPayload
		if !empty {
			err = json.Unmarshal(raw, &p)
		}
		if err == nil && p.SearchQuery == "" {
			err = fmt.Errorf("%w: %s requires searchQuery", ErrPayloadMismatch, k)
		}
		return p, wrapDecode(k, err)
	case KindImageGalleryNavigation:
		var p GalleryNavigationPayload
		if !empty {
			err = json.Unmarshal(raw, &p)
		}
		return p, wrapDecode(k, err)
	case KindPriceVisibilityToggle:
		var p PriceTogglePayload
		if !empty {
			err = json.Unmarshal(raw, &p)
		}
		return p, wrapDecode(k, err)
	default:
		var p LinkTypePayload
		if !empty {
			err = json.Unmarshal(raw, &p)
		}
		if err == nil && p.LinkType == "" {
			err = fmt.Errorf("%w: %s requires linkType", ErrPayloadMismatch, k)
		}
		return p, wrapDecode(k, err)
	}
}

func wrapDecode(k EventKind, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("decode %s payload: %w", k, err)
}

// toData flattens a payload struct through its JSON tags.
// Numbers come back as float64, the same as any decoded JSON document.
func toData(p interface{}) Data {
	raw, err := json.Marshal(p)
	if err != nil {
		return Data{}
	}
	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return Data{}
	}
	return d
}

// explicitNulls returns the keys of the JSON object b that are null and
// name a field of t.
func explicitNulls(b []byte, t reflect.Type) ([]string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	known := jsonKeys(t)

	var nulls []string
	for key, raw := range fields {
		if strings.TrimSpace(string(raw)) == "null" && known[key] {
			nulls = append(nulls, key)
		}
	}
	sort.Strings(nulls)
	return nulls, nil
}

// jsonKeys collects the JSON names of t's exported fields, embedded ones included.
func jsonKeys(t reflect.Type) map[string]bool {
	keys := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			for key := range jsonKeys(f.Type) {
				keys[key] = true
			}
			continue
		}
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name != "" && name != "-" {
			keys[name] = true
		}
	}
	return keys
}
