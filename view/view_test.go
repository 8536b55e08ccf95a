package view

import "testing"

func TestNewStackSingleView(t *testing.T) {
	s := NewStack(10)
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	top := s.Top()
	if top.Offset != 0 || top.Padding != 0 || top.IterSize != 10 {
		t.Fatalf("Top() = %+v, want {0 0 10}", top)
	}
}

func TestZoomedSizeAndPadding(t *testing.T) {
	tests := []struct {
		name             string
		iterSize         int
		position, blksz  int
		wantSize, wantPad int
	}{
		{"full block", 100, 0, 10, 10, 0},
		{"last full block", 100, 90, 10, 10, 0},
		{"short final block", 100, 95, 10, 5, 5},
		{"position past end", 100, 100, 10, 0, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := View{IterSize: tt.iterSize}
			size, pad := v.ZoomedSizeAndPadding(tt.position, tt.blksz)
			if size != tt.wantSize || pad != tt.wantPad {
				t.Errorf("got (%d, %d), want (%d, %d)", size, pad, tt.wantSize, tt.wantPad)
			}
		})
	}
}

func TestPushSplit(t *testing.T) {
	s := NewStack(100)
	s.PushSplit(20, 50, 100)
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	top := s.Top()
	if top.Offset != 20 || top.IterSize != 30 || top.Padding != 0 {
		t.Fatalf("Top() = %+v, want {20 0 30}", top)
	}
}

func TestPushSplitPastPhysicalBound(t *testing.T) {
	s := NewStack(100)
	s.PushSplit(90, 110, 100)
	top := s.Top()
	if top.Padding != 10 {
		t.Errorf("Padding = %d, want 10", top.Padding)
	}
}

func TestPushViewAndSlideTo(t *testing.T) {
	s := NewStack(25)
	unzoomed := s.PushView(10)
	if unzoomed != 25 {
		t.Fatalf("PushView returned %d, want 25", unzoomed)
	}
	if s.Top().IterSize != 10 || s.Top().Padding != 0 {
		t.Fatalf("Top() = %+v, want iter_size=10 padding=0", s.Top())
	}

	s.SlideTo(20, 10)
	top := s.Top()
	if top.Offset != 20 || top.IterSize != 5 || top.Padding != 5 {
		t.Errorf("after SlideTo(20, 10): got %+v, want {20 5 5}", top)
	}

	s.SlideTo(0, 10)
	top = s.Top()
	if top.Offset != 0 || top.IterSize != 10 || top.Padding != 0 {
		t.Errorf("after SlideTo(0, 10): got %+v, want {0 0 10}", top)
	}
}

func TestSlideToRelativeToUnzoomedParent(t *testing.T) {
	s := NewStack(100)
	s.PushSplit(40, 100, 100) // restrict to [40, 100)
	s.PushView(10)
	s.SlideTo(0, 10)
	if got := s.Top().Offset; got != 40 {
		t.Errorf("Offset = %d, want 40 (relative to split parent)", got)
	}
}

func TestPushRawAndSetTop(t *testing.T) {
	s := NewStack(10)
	s.PushRaw(View{Offset: 3, Padding: 1, IterSize: 4})
	if s.Top() != (View{Offset: 3, Padding: 1, IterSize: 4}) {
		t.Fatalf("Top() = %+v after PushRaw", s.Top())
	}
	s.SetTop(View{Offset: 5, Padding: 0, IterSize: 2})
	if s.Top() != (View{Offset: 5, Padding: 0, IterSize: 2}) {
		t.Fatalf("Top() = %+v after SetTop", s.Top())
	}
}

func TestViewsExposesFullHistory(t *testing.T) {
	s := NewStack(10)
	s.PushSplit(2, 8, 10)
	s.PushView(3)
	vs := s.Views()
	if len(vs) != 3 {
		t.Fatalf("len(Views()) = %d, want 3", len(vs))
	}
	if vs[len(vs)-1] != s.Top() {
		t.Errorf("last entry of Views() does not match Top()")
	}
}

func TestCloneTopCopiesOnlyTopView(t *testing.T) {
	s := NewStack(50)
	s.PushSplit(10, 40, 50)
	s.PushView(5)
	s.SlideTo(3, 5)

	clone := s.CloneTop()
	if clone.Len() != 1 {
		t.Fatalf("clone.Len() = %d, want 1", clone.Len())
	}
	if clone.Top() != s.Top() {
		t.Errorf("clone.Top() = %+v, want %+v", clone.Top(), s.Top())
	}
}
