package recommend

import "testing"

func TestParseTitles(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"numbered", "1. 静夜思\n2. 春晓", []string{"静夜思", "春晓"}},
		{"dash and star", "- 春望\n* 登高", []string{"春望", "登高"}},
		{"no markers", "将进酒\n行路难", []string{"将进酒", "行路难"}},
		{"blank lines dropped", "\n\n  \n春晓\n\n", []string{"春晓"}},
		{"crlf", "1. 静夜思\r\n2. 春晓\r\n", []string{"静夜思", "春晓"}},
		{"only one marker stripped", "- - 春晓", []string{"- 春晓"}},
		{"marker only", "1.\n-", []string{}},
		{"multi digit", "12. 登鹳雀楼", []string{"登鹳雀楼"}},
		{"empty", "", []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseTitles(tc.in)
			if got == nil {
				t.Fatal("expected non-nil slice")
			}
			if len(got) != len(tc.want) {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("index %d: expected %q, got %q", i, tc.want[i], got[i])
				}
			}
		})
	}
}
