package catalog

import (
	"fmt"
	"strings"

	"github.com/sajibhasan/gymkart/internal/domain/cart"
)

// ResolveVariant finds the sellable variant a line item refers to. Matching
// strategies are tried in order, first match wins:
//
//  1. exact Key equality
//  2. exact SKU equality
//  3. full option-set equality: every option pair in the selector must match
//     the variant pair-for-pair (order-independent, keyed by option name),
//     and the selector must cover every dimension the variant defines.
//
// A nil selector, or no match under any strategy, returns nil. Callers must
// treat nil as "use base price/stock", not as an error: legacy
// single-variant products carry no variant data at all.
func ResolveVariant(p Product, sel *cart.VariantSelector) *Variant {
	if sel == nil || len(p.Variants) == 0 {
		return nil
	}

	if sel.Key != "" {
		for i := range p.Variants {
			if p.Variants[i].Key == sel.Key {
				return &p.Variants[i]
			}
		}
	}

	if sel.SKU != "" {
		for i := range p.Variants {
			if p.Variants[i].SKU != "" && p.Variants[i].SKU == sel.SKU {
				return &p.Variants[i]
			}
		}
	}

	if len(sel.Options) > 0 {
		want := optionMap(sel.Options)
		for i := range p.Variants {
			if optionsEqual(want, p.Variants[i].Options) {
				return &p.Variants[i]
			}
		}
	}

	return nil
}

// optionsEqual reports whether the selector's option map matches the
// variant's options exactly: same dimensions, same values.
func optionsEqual(want map[string]string, got []cart.Option) bool {
	if len(got) == 0 || len(got) != len(want) {
		return false
	}
	for _, o := range got {
		v, ok := want[o.Name]
		if !ok || v != o.Value {
			return false
		}
	}
	return true
}

func optionMap(opts []cart.Option) map[string]string {
	m := make(map[string]string, len(opts))
	for _, o := range opts {
		m[o.Name] = o.Value
	}
	return m
}

// VariantLabel renders a variant's options as a human-readable suffix,
// e.g. "Flavor: Vanilla / Size: 2kg". Empty when the variant has no options.
func VariantLabel(v *Variant) string {
	if v == nil || len(v.Options) == 0 {
		return ""
	}
	parts := make([]string, len(v.Options))
	for i, o := range v.Options {
		parts[i] = o.Name + ": " + o.Value
	}
	return strings.Join(parts, " / ")
}

// DisplayName is the quoted product name, suffixed with the variant label
// when one applies. Used consistently across stock validation messages.
func DisplayName(p Product, v *Variant) string {
	name := fmt.Sprintf("%q", p.Name)
	if label := VariantLabel(v); label != "" {
		return name + " (" + label + ")"
	}
	return name
}
