package domain

// RootRequirement names an entry the dataset root may contain. Names are
// compared with the canonical fold, so casing in the dataset does not matter.
type RootRequirement struct {
	Name     string
	Optional bool
}

// DefaultRootRequirements returns the root entries known to the layout, in
// the order missing ones are reported.
func DefaultRootRequirements() []RootRequirement {
	return []RootRequirement{
		{Name: "dataset_description.json"},
		{Name: "README", Optional: true},
		{Name: "README.md", Optional: true},
		{Name: "README.rst", Optional: true},
		{Name: "README.txt", Optional: true},
		{Name: "CITATION.cff", Optional: true},
		{Name: "CHANGES", Optional: true},
		{Name: "LICENSE", Optional: true},
		{Name: "participants.tsv", Optional: true},
		{Name: "participants.json", Optional: true},
		{Name: ".bidsignore", Optional: true},
	}
}

// Entry is one item of a directory listing.
type Entry struct {
	Name  string
	IsDir bool
}
