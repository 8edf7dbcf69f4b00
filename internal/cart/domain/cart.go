package domain

// CartLine is one pending reservation: a product, a quantity and the branch
// the stock will be drawn from. Lines hold foreign keys only; the catalog is
// re-resolved on every read.
type CartLine struct {
	ProductID string
	Quantity  int64
	BranchID  string
}

// Cart is the in-progress, uncommitted sale. Line order is insertion order.
// A line either exists with positive quantity or does not exist; carts are
// never persisted.
type Cart struct {
	Lines []CartLine
}

// Index returns the position of the line for productID, or -1.
func (c *Cart) Index(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Remove drops the line for productID, preserving the order of the rest.
func (c *Cart) Remove(productID string) {
	if i := c.Index(productID); i >= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	}
}

func (c *Cart) Clear() {
	c.Lines = nil
}

func (c *Cart) Empty() bool {
	return len(c.Lines) == 0
}
