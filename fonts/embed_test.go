package fonts

import "testing"

func TestLoadBuiltin(t *testing.T) {
	for _, name := range Names() {
		data, err := Load("embed:" + name)
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		if len(data) == 0 {
			t.Fatalf("font %s is empty", name)
		}
	}
	if _, err := Load("Inter-Regular.ttf"); err == nil {
		t.Fatalf("expected error for unknown font")
	}
}

func TestFace(t *testing.T) {
	cases := []struct {
		family       string
		bold, italic bool
		want         string
	}{
		{"Body", false, false, "regular"},
		{"Body", true, false, "bold"},
		{"Body", false, true, "italic"},
		{"Body", true, true, "bold-italic"},
		{"Mono", true, true, "mono-bold"},
		{"code", false, false, "mono"},
		{"Serif", false, false, "serif"},
		{"roman", true, true, "serif-bold-italic"},
	}
	for _, c := range cases {
		if got := Face(c.family, c.bold, c.italic); got != c.want {
			t.Fatalf("Face(%q,%v,%v)=%s want %s", c.family, c.bold, c.italic, got, c.want)
		}
	}
}
