package immich

import "testing"

func TestAssetRecord_IsPortrait(t *testing.T) {
	tests := []struct {
		name        string
		width       int
		height      int
		orientation Orientation
		want        bool
	}{
		{"taller than wide", 3000, 4000, 1, true},
		{"wider than tall", 4000, 3000, 1, false},
		{"rotated 90 degrees", 4000, 3000, 6, true},
		{"rotated but taller", 3000, 4000, 5, false},
		{"mirrored without rotation", 3000, 4000, 2, true},
		{"zero dimensions", 0, 0, 1, false},
		{"missing orientation", 3000, 4000, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := AssetRecord{
				Width:    tt.width,
				Height:   tt.height,
				ExifInfo: ExifInfo{Orientation: tt.orientation},
			}
			if got := rec.IsPortrait(); got != tt.want {
				t.Fatalf("IsPortrait() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFavoritesFilter_UnmarshalText(t *testing.T) {
	var f FavoritesFilter
	if err := f.UnmarshalText([]byte("Only")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f != FavoritesOnly {
		t.Fatalf("expected %q, got %q", FavoritesOnly, f)
	}
	if err := f.UnmarshalText([]byte("")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f != FavoritesAll {
		t.Fatalf("empty value should decode to %q, got %q", FavoritesAll, f)
	}
	if err := f.UnmarshalText([]byte("sometimes")); err == nil {
		t.Fatal("expected an error for an unsupported filter")
	}
}

func TestFavoritesFilter_IsFavorite(t *testing.T) {
	if got := FavoritesAll.isFavorite(); got != nil {
		t.Fatalf("all should omit the parameter, got %v", *got)
	}
	if got := FavoritesOnly.isFavorite(); got == nil || !*got {
		t.Fatal("only should request isFavorite=true")
	}
	if got := FavoritesExclude.isFavorite(); got == nil || *got {
		t.Fatal("exclude should request isFavorite=false")
	}
}
