package domain

// NormalizeLines drops lines without a product id or with a non-positive
// quantity and folds duplicate product ids into the first occurrence.
func NormalizeLines(in []CartLine) []CartLine {
	out := make([]CartLine, 0, len(in))
	idx := make(map[string]int, len(in))
	for _, l := range in {
		l.Product.Normalize()
		if l.Product.ID == "" || l.Quantity < 1 {
			continue
		}
		if i, ok := idx[l.Product.ID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		idx[l.Product.ID] = len(out)
		out = append(out, l)
	}
	return out
}
