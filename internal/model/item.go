package model

// Item is the domain model for a todo entry as the remote collection
// reports it. The wire names follow the collection's JSON.
type Item struct {
	ID      int    `json:"id"`
	Title   string `json:"todo"`
	Done    bool   `json:"completed"`
	OwnerID int    `json:"userId"`
}

// Draft is the payload for creating an item; the server assigns the id.
type Draft struct {
	Title   string `json:"todo"`
	Done    bool   `json:"completed"`
	OwnerID int    `json:"userId"`
}

// Patch is a partial update. Nil fields are not sent.
type Patch struct {
	Title *string `json:"todo,omitempty"`
	Done  *bool   `json:"completed,omitempty"`
}

// Titles returns the titles of items in order.
func Titles(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Title)
	}
	return out
}

// IndexOf returns the position of the item with id, or -1.
func IndexOf(items []Item, id int) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Stats counts done and pending items.
func Stats(items []Item) (done, pending int) {
	for _, it := range items {
		if it.Done {
			done++
		} else {
			pending++
		}
	}
	return
}
