package topic

import "testing"

func TestTopic_Segments(t *testing.T) {
	tests := []struct {
		topic    Topic
		expected []string
	}{
		{Topic("calc.memory.changed"), []string{"calc", "memory", "changed"}},
		{Topic("input.key"), []string{"input", "key"}},
		{Topic("single"), []string{"single"}},
		{Topic(""), nil},
	}

	for _, tt := range tests {
		t.Run(tt.topic.String(), func(t *testing.T) {
			got := tt.topic.Segments()
			if len(got) != len(tt.expected) {
				t.Fatalf("Segments() = %v, want %v", got, tt.expected)
			}
			for i, seg := range got {
				if seg != tt.expected[i] {
					t.Errorf("Segments()[%d] = %v, want %v", i, seg, tt.expected[i])
				}
			}
		})
	}
}

func TestTopic_ParentChildBase(t *testing.T) {
	tp := Topic("calc.memory.changed")
	if got := tp.Parent(); got != "calc.memory" {
		t.Errorf("Parent() = %q, want calc.memory", got)
	}
	if got := Topic("calc").Parent(); got != "" {
		t.Errorf("Parent() of root = %q, want empty", got)
	}
	if got := Topic("calc").Child("changed"); got != "calc.changed" {
		t.Errorf("Child() = %q, want calc.changed", got)
	}
	if got := Topic("").Child("calc"); got != "calc" {
		t.Errorf("Child() of empty = %q, want calc", got)
	}
	if got := tp.Base(); got != "changed" {
		t.Errorf("Base() = %q, want changed", got)
	}
	if got := tp.Root(); got != "calc" {
		t.Errorf("Root() = %q, want calc", got)
	}
	if got := Topic("app").Base(); got != "app" {
		t.Errorf("Base() of root = %q, want app", got)
	}
	if got := Join("config", "changed"); got != "config.changed" {
		t.Errorf("Join() = %q, want config.changed", got)
	}
}

func TestTopic_IsValid(t *testing.T) {
	tests := map[Topic]bool{
		"calc.changed": true,
		"calc":         true,
		"":             false,
		".calc":        false,
		"calc.":        false,
		"calc..key":    false,
	}
	for tp, want := range tests {
		if got := tp.IsValid(); got != want {
			t.Errorf("IsValid(%q) = %v, want %v", tp, got, want)
		}
	}
}

func TestTopic_Matches(t *testing.T) {
	tests := []struct {
		topic   Topic
		pattern Topic
		want    bool
	}{
		{"calc.changed", "calc.changed", true},
		{"calc.changed", "calc.*", true},
		{"calc.memory.changed", "calc.*", false},
		{"calc.memory.changed", "calc.**", true},
		{"calc", "calc.**", true},
		{"config.changed", "*.changed", true},
		{"input.key", "**", true},
		{"input.key", "calc.*", false},
		{"calc.changed", "calc.changed.extra", false},
		{"calc.memory.value.changed", "calc.**.changed", true},
		{"calc.changed", "calc.**.changed", true},
		{"calc.memory.value", "calc.**.changed", false},
		{"script.output", "*.*", true},
		{"script", "*.*", false},
	}

	for _, tt := range tests {
		if got := tt.topic.Matches(tt.pattern); got != tt.want {
			t.Errorf("%q.Matches(%q) = %v, want %v", tt.topic, tt.pattern, got, tt.want)
		}
	}
}

func TestTopic_IsWildcard(t *testing.T) {
	if !Topic("calc.*").IsWildcard() || !Topic("**").IsWildcard() {
		t.Error("expected wildcard patterns")
	}
	if Topic("calc.changed").IsWildcard() {
		t.Error("calc.changed is not a wildcard")
	}
}
