package markup

import "testing"

func TestHashtags_OrderedAndDeduplicated(t *testing.T) {
	t.Parallel()

	text := "Groceries #errands for the week\n\nDon't forget #family and #errands again."
	got := Hashtags(text)
	want := []string{"errands", "family"}
	if len(got) != len(want) {
		t.Fatalf("tags = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tags = %v; want %v", got, want)
		}
	}
}

func TestHashtags_IgnoresCode(t *testing.T) {
	t.Parallel()

	text := "real #tag here\n\n```\n#not-a-tag\n```\n\nand `#inline` stays code"
	got := Hashtags(text)
	if len(got) != 1 || got[0] != "tag" {
		t.Fatalf("tags = %v; want [tag]", got)
	}
}

func TestHashtags_None(t *testing.T) {
	t.Parallel()

	if got := Hashtags("plain text, no tags"); len(got) != 0 {
		t.Fatalf("tags = %v; want none", got)
	}
}

func TestCheckboxes_Counts(t *testing.T) {
	t.Parallel()

	text := "- [x] milk\n- [ ] eggs\n- [X] bread\n- plain item\n"
	done, total := Checkboxes(text)
	if done != 2 || total != 3 {
		t.Fatalf("checkboxes = %d/%d; want 2/3", done, total)
	}
}

func TestToggleCheckbox(t *testing.T) {
	t.Parallel()

	text := "- [x] milk\n- [ ] eggs\n"

	toggled, err := ToggleCheckbox(text, 1)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if toggled != "- [x] milk\n- [x] eggs\n" {
		t.Fatalf("toggle on: %q", toggled)
	}

	toggled, err = ToggleCheckbox(toggled, 0)
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if toggled != "- [ ] milk\n- [x] eggs\n" {
		t.Fatalf("toggle off: %q", toggled)
	}

	if _, err := ToggleCheckbox(text, 5); err == nil {
		t.Fatal("expected out-of-range error")
	}
}
