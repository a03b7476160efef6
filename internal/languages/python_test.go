package languages

import "testing"

func TestPython_Patterns(t *testing.T) {
	runRecognizeCases(t, Python, []recognizeCase{
		{
			name:     "os.environ with double quotes",
			line:     `db = os.environ["DATABASE_URL"]`,
			expected: newMatch([]string{"DATABASE_URL"}, nil),
		},
		{
			name:     "os.environ with single quotes",
			line:     `db = os.environ['DATABASE_URL']`,
			expected: newMatch([]string{"DATABASE_URL"}, nil),
		},
		{
			name:     "os.getenv without default",
			line:     `key = os.getenv("API_KEY")`,
			expected: newMatch([]string{"API_KEY"}, nil),
		},
		{
			name:     "os.getenv with default",
			line:     `key = os.getenv("API_KEY", "default")`,
			expected: newMatch([]string{"API_KEY"}, []string{"API_KEY"}),
		},
		{
			name:     "os.environ.get without default",
			line:     `token = os.environ.get("TOKEN")`,
			expected: newMatch([]string{"TOKEN"}, nil),
		},
		{
			name:     "os.environ.get with None default",
			line:     `token = os.environ.get("TOKEN", None)`,
			expected: newMatch([]string{"TOKEN"}, []string{"TOKEN"}),
		},
		{
			name:     "imported getenv",
			line:     `home = getenv('HOME')`,
			expected: newMatch([]string{"HOME"}, nil),
		},
		{
			name:     "getenvb with bytes literal",
			line:     `raw = os.getenvb(b"BYTES_VAR")`,
			expected: newMatch([]string{"BYTES_VAR"}, nil),
		},
		{
			name:     "or fallback after call",
			line:     `token = os.getenv("TOKEN") or "anonymous"`,
			expected: newMatch([]string{"TOKEN"}, []string{"TOKEN"}),
		},
		{
			name:     "multiple calls on one line",
			line:     `url = os.getenv("A") + os.getenv("B", "b") + os.environ["C"]`,
			expected: newMatch([]string{"A", "B", "C"}, []string{"B"}),
		},
		{
			name:     "dict get is not env",
			line:     `value = config.get("NOT_ENV", 1)`,
			expected: NewMatch(),
		},
		{
			name:     "dynamic name",
			line:     `value = os.getenv(name)`,
			expected: NewMatch(),
		},
		{
			name:     "nested read as the default argument",
			line:     `url = os.environ.get('A', os.getenv('B'))`,
			expected: newMatch([]string{"A", "B"}, []string{"A"}),
		},
		{
			name:     "nested environ get as the default argument",
			line:     `url = environ.get("A", environ.get("B", "x"))`,
			expected: newMatch([]string{"A", "B"}, []string{"A", "B"}),
		},
		{
			name:     "trailing comma is not a default",
			line:     `value = os.environ.get("ONLY",)`,
			expected: newMatch([]string{"ONLY"}, nil),
		},
	})
}
