package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCandidate(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"blahService", true},
		{"blahBackendService", true},
		{"Service", true},
		{"blah", false},
		{"blahservice", false},
		{"path/to/blahService", false},
		{`path\to\blahService`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCandidate(tt.name))
		})
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"blahAnotherBackendService", []string{"blah", "Another", "Backend", "Service"}},
		{"blahService", []string{"blah", "Service"}},
		{"blah", []string{"blah"}},
		{"", nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Tokenize(tt.in), "Tokenize(%q)", tt.in)
	}
}

func TestGetServiceInfo(t *testing.T) {
	tests := []struct {
		name       string
		service    string
		adapterMap map[string]string
		want       ServiceInfo
	}{
		{
			name:       "default adapter single token",
			service:    "blahService",
			adapterMap: map[string]string{"service": "generic"},
			want:       ServiceInfo{AdapterName: "service", AdapterImpl: "generic", ResourceName: "blah"},
		},
		{
			name:       "default adapter keeps non-matching token in resource",
			service:    "blahYoService",
			adapterMap: map[string]string{"service": "generic"},
			want:       ServiceInfo{AdapterName: "service", AdapterImpl: "generic", ResourceName: "blah.yo"},
		},
		{
			name:       "explicit adapter token",
			service:    "blahBackendService",
			adapterMap: map[string]string{"service": "generic", "backend": "test"},
			want:       ServiceInfo{AdapterName: "backend", AdapterImpl: "test", ResourceName: "blah"},
		},
		{
			name:       "multi token resource with adapter",
			service:    "blahAnotherBackendService",
			adapterMap: map[string]string{"backend": "test"},
			want:       ServiceInfo{AdapterName: "backend", AdapterImpl: "test", ResourceName: "blah.another"},
		},
		{
			name:       "adapter token alone falls back to resource name",
			service:    "backendService",
			adapterMap: map[string]string{"service": "generic", "backend": "test"},
			want:       ServiceInfo{AdapterName: "service", AdapterImpl: "generic", ResourceName: "backend"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetServiceInfo(tt.service, tt.adapterMap)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetServiceInfoIsPure(t *testing.T) {
	adapterMap := map[string]string{"service": "generic", "repo": "solr"}

	first, err := GetServiceInfo("postRepoService", adapterMap)
	require.NoError(t, err)
	second, err := GetServiceInfo("postRepoService", adapterMap)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGetServiceInfoRejectsInvalidNames(t *testing.T) {
	for _, bad := range []string{"", "blah", "serviceblah"} {
		_, err := GetServiceInfo(bad, map[string]string{"service": "generic"})
		require.Error(t, err, "name %q", bad)
	}
}
