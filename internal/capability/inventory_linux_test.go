//go:build linux

package capability

import "testing"

func TestIsDisplayClass(t *testing.T) {
	for class, want := range map[string]bool{"30000": true, "38000": true, "30200": true, "C0330": false, "60400": false, "": false} {
		if got := isDisplayClass(class); got != want {
			t.Fatalf("isDisplayClass(%q) = %v, want %v", class, got, want)
		}
	}
}
