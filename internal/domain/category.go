package domain

// EventCategory is a node in the category tree. Root nodes have a nil parent.
// Search filters match the node exactly and do not descend into children.
type EventCategory struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	ParentID *string          `json:"parent_id,omitempty"`
	Children []*EventCategory `json:"children,omitempty"`
}

// IsRoot reports whether the category has no parent
func (c *EventCategory) IsRoot() bool {
	return c.ParentID == nil
}

// AddChild links a child node to the category
func (c *EventCategory) AddChild(child *EventCategory) {
	child.ParentID = &c.ID
	c.Children = append(c.Children, child)
}
