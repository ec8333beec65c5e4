package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitSuccess},
		{name: "uncategorized", err: errors.New("boom"), want: ExitGeneralError},
		{name: "network", err: WrapCategory(CategoryNetwork, errors.New("timeout")), want: ExitNetworkError},
		{name: "invalid input", err: WrapCategory(CategoryInvalidInput, errors.New("bad url")), want: ExitInvalidInput},
		{name: "missing dependency", err: WrapCategory(CategoryMissingDependency, errors.New("no ffmpeg")), want: ExitMissingDependency},
		{name: "restricted maps to general", err: WrapCategory(CategoryRestricted, errors.New("private")), want: ExitGeneralError},
		{name: "filesystem maps to general", err: WrapCategory(CategoryFilesystem, errors.New("denied")), want: ExitGeneralError},
		{name: "wrapped network survives fmt.Errorf", err: fmt.Errorf("fetching: %w", WrapCategory(CategoryNetwork, errors.New("eof"))), want: ExitNetworkError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Fatalf("unexpected exit code: got %d want %d", got, tt.want)
			}
		})
	}
}

func TestWrapCategoryNil(t *testing.T) {
	if err := WrapCategory(CategoryNetwork, nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestCategoryUnwrap(t *testing.T) {
	base := errors.New("root cause")
	wrapped := WrapCategory(CategoryRestricted, fmt.Errorf("context: %w", base))
	if !errors.Is(wrapped, base) {
		t.Fatal("expected errors.Is to find the root cause through the category wrapper")
	}
	if Category(wrapped) != CategoryRestricted {
		t.Fatalf("unexpected category: %v", Category(wrapped))
	}
}
