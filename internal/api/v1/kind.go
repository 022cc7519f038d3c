package v1

import "fmt"

// EventKind names a tracked storefront interaction.
// The namespace is flat and unversioned.
type EventKind string

const (
	KindProductView             EventKind = "product_view"
	KindProductClick            EventKind = "product_click"
	KindActionButtonClick       EventKind = "action_button_click"
	KindOrderButtonClick        EventKind = "order_button_click"
	KindStoreVisit              EventKind = "store_visit"
	KindCategoryFilter          EventKind = "category_filter"
	KindSearchQuery             EventKind = "search_query"
	KindHighlightedProductView  EventKind = "highlighted_product_view"
	KindHighlightedProductClick EventKind = "highlighted_product_click"
	KindImageGalleryNavigation  EventKind = "image_gallery_navigation"
	KindPriceVisibilityToggle   EventKind = "price_visibility_toggle"
	KindLinkTypeClick           EventKind = "link_type_click"
)

// Kinds lists every known event kind in declaration order.
var Kinds = []EventKind{
	KindProductView,
	KindProductClick,
	KindActionButtonClick,
	KindOrderButtonClick,
	KindStoreVisit,
	KindCategoryFilter,
	KindSearchQuery,
	KindHighlightedProductView,
	KindHighlightedProductClick,
	KindImageGalleryNavigation,
	KindPriceVisibilityToggle,
	KindLinkTypeClick,
}

// ParseKind converts a wire string to an EventKind.
func ParseKind(s string) (EventKind, error) {
	k := EventKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown event kind %q", s)
	}
	return k, nil
}

// Valid reports whether k is one of the known kinds.
func (k EventKind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// CountField is the rollup counter field for k, e.g. "product_view_count".
func (k EventKind) CountField() string {
	return string(k) + "_count"
}

// LastField is the rollup last-seen field for k, e.g. "product_view_last".
func (k EventKind) LastField() string {
	return string(k) + "_last"
}

func (k EventKind) String() string {
	return string(k)
}
