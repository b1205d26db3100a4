package infrastructure

import "testing"

func TestGetExtensionFromMIME(t *testing.T) {
	cases := []struct {
		mime    string
		want    string
		wantErr bool
	}{
		{"image/jpeg", "jpg", false},
		{"image/jpg", "jpg", false},
		{"image/png", "png", false},
		{"image/webp", "webp", false},
		{"image/gif", "bin", true},
		{"text/html", "bin", true},
	}

	for _, tc := range cases {
		got, err := GetExtensionFromMIME(tc.mime)
		if (err != nil) != tc.wantErr {
			t.Errorf("GetExtensionFromMIME(%q) err = %v, wantErr %v", tc.mime, err, tc.wantErr)
		}
		if got != tc.want {
			t.Errorf("GetExtensionFromMIME(%q) = %q, want %q", tc.mime, got, tc.want)
		}
	}
}

func TestIsSupportedImageMIME(t *testing.T) {
	if !IsSupportedImageMIME("image/png") {
		t.Error("png must be supported")
	}
	if IsSupportedImageMIME("application/pdf") {
		t.Error("pdf must not be supported")
	}
}
