package curl

import (
	"testing"

	"github.com/abdul-hamid-achik/spag/packages/core/request"
	"github.com/abdul-hamid-achik/spag/packages/errdef"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name     string
		cmd      string
		expected *request.Template
		file     string
	}{
		{
			name:     "simple get",
			cmd:      `curl https://api.example.com/users`,
			expected: &request.Template{Method: request.MethodGet, Endpoint: "https://api.example.com", Resource: "/users"},
			file:     "get_users",
		},
		{
			name:     "explicit method with data",
			cmd:      `curl -X PUT https://api.example.com/users/42 -d '{"name":"John"}'`,
			expected: &request.Template{Method: request.MethodPut, Endpoint: "https://api.example.com", Resource: "/users/42", Body: `{"name":"John"}`},
			file:     "put_users_42",
		},
		{
			name:     "data implies post",
			cmd:      `curl -d "name=John" -d "age=3" https://api.example.com/users`,
			expected: &request.Template{Method: request.MethodPost, Endpoint: "https://api.example.com", Resource: "/users", Body: "name=John&age=3"},
			file:     "post_users",
		},
		{
			name: "headers keep order and duplicates",
			cmd:  `curl -H "Accept: application/json" -H 'X-Tag: a' -H "X-Tag: b" -A spag-test https://api.example.com/`,
			expected: &request.Template{
				Method:   request.MethodGet,
				Endpoint: "https://api.example.com",
				Resource: "/",
				Headers: request.Headers{
					{Name: "Accept", Value: "application/json"},
					{Name: "X-Tag", Value: "a"},
					{Name: "X-Tag", Value: "b"},
					{Name: "User-Agent", Value: "spag-test"},
				},
			},
			file: "get_root",
		},
		{
			name: "basic auth",
			cmd:  `curl -u admin:secret https://api.example.com/admin`,
			expected: &request.Template{
				Method:   request.MethodGet,
				Endpoint: "https://api.example.com",
				Resource: "/admin",
				Headers:  request.Headers{{Name: "Authorization", Value: "Basic YWRtaW46c2VjcmV0"}},
			},
			file: "get_admin",
		},
		{
			name:     "placeholder url",
			cmd:      `curl --compressed {{endpoint}}/items/{{id}}`,
			expected: &request.Template{Method: request.MethodGet, Resource: "{{endpoint}}/items/{{id}}"},
			file:     "get_root",
		},
		{
			name:     "query string",
			cmd:      `curl "https://api.example.com/search?q=a&page=2"`,
			expected: &request.Template{Method: request.MethodGet, Endpoint: "https://api.example.com", Resource: "/search?q=a&page=2"},
			file:     "get_search",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv, err := NewConverter().Convert(tt.cmd)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, conv.Template)
			assert.Equal(t, tt.file, conv.Name)
		})
	}
}

func TestConvert_Flags(t *testing.T) {
	conv, err := NewConverter().Convert(`curl -k -L https://api.example.com`)
	require.NoError(t, err)
	assert.True(t, conv.Insecure)
	assert.True(t, conv.FollowRedirects)
}

func TestConvert_WithoutEndpoint(t *testing.T) {
	conv, err := NewConverter(WithEndpoint(false)).Convert(`curl https://api.example.com/users`)
	require.NoError(t, err)
	assert.Empty(t, conv.Template.Endpoint)
	assert.Equal(t, "/users", conv.Template.Resource)
}

func TestConvert_Errors(t *testing.T) {
	tests := []struct {
		cmd  string
		code errdef.Code
	}{
		{`curl`, errdef.CodeMalformedTemplate},
		{`curl -H`, errdef.CodeMalformedTemplate},
		{`curl -X OPTIONS https://api.example.com`, errdef.CodeMalformedTemplate},
		{`curl -H "broken" https://api.example.com`, errdef.CodeMalformedHeader},
		{`curl -v`, errdef.CodeMalformedTemplate},
	}
	for _, tt := range tests {
		_, err := NewConverter().Convert(tt.cmd)
		require.Error(t, err, tt.cmd)
		assert.Equal(t, tt.code, errdef.CodeOf(err), tt.cmd)
	}
}

func TestConvertAll(t *testing.T) {
	data := []byte(`# users
curl https://api.example.com/users

curl -X POST https://api.example.com/users \
  -H "Content-Type: application/json" \
  -d '{"name":"John"}'
curl https://api.example.com/users
`)

	converted, err := NewConverter().ConvertAll(data)
	require.NoError(t, err)
	require.Len(t, converted, 3)

	assert.Equal(t, "get_users", converted[0].Name)
	assert.Equal(t, "post_users", converted[1].Name)
	assert.Equal(t, request.Headers{{Name: "Content-Type", Value: "application/json"}}, converted[1].Template.Headers)
	assert.Equal(t, `{"name":"John"}`, converted[1].Template.Body)
	assert.Equal(t, "get_users_2", converted[2].Name)
}

func TestConvertAll_ReportsCommandNumber(t *testing.T) {
	_, err := NewConverter().ConvertAll([]byte("curl https://a.example.com\ncurl -X TRACE https://b.example.com\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command 2")
	assert.ErrorIs(t, err, errdef.ErrMalformedTemplate)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"-H", "A: b c", "x'y", `a\b`}, tokenize(`-H "A: b c" "x'y" 'a\b'`))
}
