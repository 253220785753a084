package acestream

import "testing"

const testID = "2773b39926d15dd3d9495d94c4050604792d7031"

func TestContentIDValid(t *testing.T) {
	tests := []struct {
		name  string
		id    ContentID
		valid bool
	}{
		{"valid lowercase", ContentID(testID), true},
		{"valid uppercase", ContentID("2773B39926D15DD3D9495D94C4050604792D7031"), true},
		{"too short", ContentID(testID[:39]), false},
		{"too long", ContentID(testID + "a"), false},
		{"non-hex character", ContentID("z773b39926d15dd3d9495d94c4050604792d7031"), false},
		{"empty", ContentID(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestRecognizerFind(t *testing.T) {
	r := NewRecognizer(Options{})

	tests := []struct {
		name    string
		text    string
		wantIDs []ContentID
	}{
		{
			name:    "acestream scheme",
			text:    "acestream://" + testID,
			wantIDs: []ContentID{ContentID(testID)},
		},
		{
			name:    "bare path segment with scheme",
			text:    "http://example.org:8080/" + testID,
			wantIDs: []ContentID{ContentID(testID)},
		},
		{
			name:    "bare path segment without scheme",
			text:    "example.org:8080/" + testID,
			wantIDs: []ContentID{ContentID(testID)},
		},
		{
			name:    "getstream query parameter",
			text:    "http://127.0.0.1:6878/ace/getstream?id=" + testID,
			wantIDs: []ContentID{ContentID(testID)},
		},
		{
			name:    "uppercase scheme and hash normalized",
			text:    "ACESTREAM://2773B39926D15DD3D9495D94C4050604792D7031",
			wantIDs: []ContentID{ContentID(testID)},
		},
		{
			name: "multiple matches leftmost order",
			text: "acestream://1111111111111111111111111111111111111111\nacestream://2222222222222222222222222222222222222222",
			wantIDs: []ContentID{
				ContentID("1111111111111111111111111111111111111111"),
				ContentID("2222222222222222222222222222222222222222"),
			},
		},
		{
			name:    "39 hex characters is not a match",
			text:    "acestream://" + testID[:39],
			wantIDs: nil,
		},
		{
			name:    "41 hex characters is not a match",
			text:    "acestream://" + testID + "a",
			wantIDs: nil,
		},
		{
			name:    "host without port is not a match",
			text:    "https://example.com/" + testID,
			wantIDs: nil,
		},
		{
			name:    "port longer than five digits is not a match",
			text:    "http://example.org:123456/" + testID,
			wantIDs: nil,
		},
		{
			name:    "plain text without references",
			text:    "#EXTM3U\n#EXTINF:-1,Channel\nhttp://example.com/stream.m3u8",
			wantIDs: nil,
		},
		{
			name:    "stray query id ignored by default",
			text:    "http://example.org:8080/some/path?id=" + testID,
			wantIDs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := r.Find(tt.text)
			if len(matches) != len(tt.wantIDs) {
				t.Fatalf("Find() returned %d matches, want %d", len(matches), len(tt.wantIDs))
			}
			for i, m := range matches {
				if m.ID != tt.wantIDs[i] {
					t.Errorf("match %d: ID = %s, want %s", i, m.ID, tt.wantIDs[i])
				}
				if m.Start < 0 || m.End > len(tt.text) || m.Start >= m.End {
					t.Errorf("match %d: invalid span [%d,%d)", i, m.Start, m.End)
				}
			}
		})
	}
}

func TestRecognizerFindStrayQueryIDs(t *testing.T) {
	r := NewRecognizer(Options{StrayQueryIDs: true})

	text := "http://example.org:8080/some/path?id=" + testID
	matches := r.Find(text)
	if len(matches) != 1 {
		t.Fatalf("Find() returned %d matches, want 1", len(matches))
	}
	if matches[0].ID != ContentID(testID) {
		t.Errorf("ID = %s, want %s", matches[0].ID, testID)
	}
	if got := text[matches[0].Start:matches[0].End]; got != text {
		t.Errorf("span = %q, want the whole URL", got)
	}
}

func TestRecognizerMatchSpanCoversWholeReference(t *testing.T) {
	r := NewRecognizer(Options{})

	text := "before acestream://" + testID + " after"
	matches := r.Find(text)
	if len(matches) != 1 {
		t.Fatalf("Find() returned %d matches, want 1", len(matches))
	}
	want := "acestream://" + testID
	if got := text[matches[0].Start:matches[0].End]; got != want {
		t.Errorf("span = %q, want %q", got, want)
	}
}
