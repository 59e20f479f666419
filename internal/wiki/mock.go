package wiki

import "context"

// Mock is a deterministic KnowledgeSource implementation for testing.
type Mock struct {
	// SourceName overrides the reported source name. Defaults to "Wikipedia".
	SourceName string

	// Pages maps article titles to their full text.
	Pages map[string]string

	// SearchErr, if set, is returned by Search.
	SearchErr error

	// FetchErr, if set, is returned by Fetch.
	FetchErr error

	// SearchCalls counts Search invocations.
	SearchCalls int

	// FetchCalls counts Fetch invocations.
	FetchCalls int
}

// NewMock creates a mock source serving the given pages.
func NewMock(pages map[string]string) *Mock {
	return &Mock{Pages: pages}
}

// Name reports the mock's source name.
func (m *Mock) Name() string {
	if m.SourceName != "" {
		return m.SourceName
	}
	return "Wikipedia"
}

// Search returns titles of pages whose title matches the name exactly.
func (m *Mock) Search(ctx context.Context, name string) ([]string, error) {
	m.SearchCalls++
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	if _, ok := m.Pages[name]; ok {
		return []string{name}, nil
	}
	return nil, nil
}

// Fetch returns the stored page text.
func (m *Mock) Fetch(ctx context.Context, title string) (string, error) {
	m.FetchCalls++
	if m.FetchErr != nil {
		return "", m.FetchErr
	}
	return m.Pages[title], nil
}
