package extract

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"a\n\nb", "a b"},
		{"  Invoice\t#42 \r\n total:  $100  ", "Invoice #42 total: $100"},
	}
	for _, tc := range tests {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		mime string
		want Kind
	}{
		{"application/pdf", KindPDF},
		{"Application/PDF; charset=binary", KindPDF},
		{"image/png", KindImage},
		{"image/jpeg", KindImage},
		{"text/plain", KindUnsupported},
		{"", KindUnsupported},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.mime, func(t *testing.T) {
			t.Parallel()
			if got := Classify(tc.mime); got != tc.want {
				t.Fatalf("Classify(%q) = %s, want %s", tc.mime, got, tc.want)
			}
		})
	}
}

func TestPDFTextRejectsGarbage(t *testing.T) {
	if _, _, err := (PDFText{}).Text([]byte("not a pdf at all")); err == nil {
		t.Fatalf("expected error for corrupted pdf")
	}
	if _, _, err := (PDFText{}).Text(nil); err == nil {
		t.Fatalf("expected error for empty pdf")
	}
}
