package store

// Post is a single publishable social-media content unit. The JSON
// field names are the on-disk format of the local blob store.
type Post struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	ImageURL   string `json:"imageUrl"`
	CategoryID string `json:"categoryId"`
	// CreatedAt is epoch milliseconds, set once at creation and
	// preserved across updates.
	CreatedAt int64 `json:"createdAt"`
}

// Category is a named, colored label used to group posts. Color is one
// of the palette presets and is purely presentational. Categories have
// no update operation: they are created and deleted only.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ColorPreset is a named entry of the fixed category color palette.
type ColorPreset struct {
	Label string
	Value string
}

// Palette is the fixed set of category colors. The first entry is the
// default when a category is created without an explicit color.
var Palette = []ColorPreset{
	{Label: "Blu", Value: "bg-blue-100 text-blue-800"},
	{Label: "Verde", Value: "bg-green-100 text-green-800"},
	{Label: "Rosso", Value: "bg-red-100 text-red-800"},
	{Label: "Giallo", Value: "bg-yellow-100 text-yellow-800"},
	{Label: "Viola", Value: "bg-purple-100 text-purple-800"},
	{Label: "Rosa", Value: "bg-pink-100 text-pink-800"},
	{Label: "Indaco", Value: "bg-indigo-100 text-indigo-800"},
	{Label: "Arancio", Value: "bg-orange-100 text-orange-800"},
	{Label: "Teal", Value: "bg-teal-100 text-teal-800"},
}

// ValidColor reports whether value is one of the palette presets.
func ValidColor(value string) bool {
	for _, p := range Palette {
		if p.Value == value {
			return true
		}
	}
	return false
}
