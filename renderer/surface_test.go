package renderer

import "testing"

func TestMissing(t *testing.T) {
	var typedNil *SoftwareSurface
	tests := []struct {
		name string
		s    Surface
		want bool
	}{
		{"nil interface", nil, true},
		{"nil pointer", typedNil, true},
		{"software", NewSoftwareSurface(4, 4), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Missing(tt.s); got != tt.want {
				t.Errorf("Missing() = %v, want %v", got, tt.want)
			}
		})
	}
}
