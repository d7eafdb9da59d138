package cards

import "testing"

func TestEncodeParams(t *testing.T) {
	tests := []struct {
		name   string
		params []Param
		want   string
	}{
		{
			name: "order preserved",
			params: []Param{
				{"page", "2"},
				{"pageSize", "50"},
				{"orderBy", "releaseDate"},
			},
			want: "page=2&pageSize=50&orderBy=releaseDate",
		},
		{
			name: "empty values dropped",
			params: []Param{
				{"page", "1"},
				{"series", ""},
				{"legalities.standard", "legal"},
			},
			want: "page=1&legalities.standard=legal",
		},
		{
			name: "empty key dropped",
			params: []Param{
				{"", "value"},
				{"page", "1"},
			},
			want: "page=1",
		},
		{
			name: "values escaped",
			params: []Param{
				{"name", "Mr. Mime & friends"},
			},
			want: "name=Mr.+Mime+%26+friends",
		},
		{
			name:   "no params",
			params: nil,
			want:   "",
		},
		{
			name: "all empty",
			params: []Param{
				{"a", ""},
				{"b", ""},
			},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := encodeParams(tt.params); got != tt.want {
				t.Errorf("encodeParams() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSearchQuery(t *testing.T) {
	tests := []struct {
		name    string
		setID   string
		filters []Filter
		want    string
	}{
		{
			name:  "set term only",
			setID: "base1",
			want:  "set.id:base1",
		},
		{
			name:  "filters follow insertion order",
			setID: "base1",
			filters: []Filter{
				{"rarity", "Rare Holo"},
				{"types", "Fire"},
			},
			want: `set.id:base1 rarity:"Rare Holo" types:Fire`,
		},
		{
			name:  "reversed insertion order",
			setID: "base1",
			filters: []Filter{
				{"types", "Fire"},
				{"rarity", "Rare Holo"},
			},
			want: `set.id:base1 types:Fire rarity:"Rare Holo"`,
		},
		{
			name:  "empty filter values contribute nothing",
			setID: "sv7",
			filters: []Filter{
				{"rarity", ""},
				{"name", "Pikachu"},
				{"types", ""},
			},
			want: "set.id:sv7 name:Pikachu",
		},
		{
			name:  "empty field contributes nothing",
			setID: "sv7",
			filters: []Filter{
				{"", "orphan"},
			},
			want: "set.id:sv7",
		},
		{
			name:  "single-word values never quoted",
			setID: "swsh1",
			filters: []Filter{
				{"name", "Charizard"},
			},
			want: "set.id:swsh1 name:Charizard",
		},
		{
			name:  "tab counts as whitespace",
			setID: "swsh1",
			filters: []Filter{
				{"name", "odd\tvalue"},
			},
			want: "set.id:swsh1 name:\"odd\tvalue\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := searchQuery(tt.setID, tt.filters); got != tt.want {
				t.Errorf("searchQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}
