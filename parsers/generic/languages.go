package generic

import (
	"log/slog"
	"regexp"

	"github.com/sevigo/docchunk/schema"
)

var (
	hashComments  = []string{"#"}
	slashComments = []string{"//", "/*", "*"}
)

// Languages is the built-in language table.
var Languages = []Language{
	{
		Name:       "python",
		Aliases:    []string{"py", "python3"},
		Extensions: []string{".py", ".pyi"},
		Declarations: []*regexp.Regexp{
			regexp.MustCompile(`^(?:async\s+)?def\s+\w+`),
			regexp.MustCompile(`^class\s+\w+`),
		},
		Decorators:      []*regexp.Regexp{regexp.MustCompile(`^@[\w.]+`)},
		CommentPrefixes: hashComments,
	},
	{
		Name:       "javascript",
		Aliases:    []string{"js", "jsx", "mjs", "typescript", "ts", "tsx"},
		Extensions: []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx"},
		Declarations: []*regexp.Regexp{
			regexp.MustCompile(`^(?:export\s+)?(?:default\s+)?(?:async\s+)?function\*?\s*\w*\s*\(`),
			regexp.MustCompile(`^(?:export\s+)?(?:default\s+)?(?:abstract\s+)?class\s+\w+`),
			regexp.MustCompile(`^(?:export\s+)?(?:const|let|var)\s+\w+\s*(?::[^=]+)?=\s*(?:async\s+)?(?:function|\([^)]*\)\s*(?::[^=]+)?=>|\w+\s*=>)`),
			regexp.MustCompile(`^(?:export\s+)?(?:declare\s+)?(?:interface|type|enum|namespace)\s+\w+`),
		},
		Decorators:      []*regexp.Regexp{regexp.MustCompile(`^@\w+`)},
		CommentPrefixes: slashComments,
	},
	{
		Name:       "java",
		Aliases:    []string{"kotlin", "kt", "csharp", "cs", "c#", "scala"},
		Extensions: []string{".java", ".kt", ".cs", ".scala"},
		Declarations: []*regexp.Regexp{
			regexp.MustCompile(`^(?:(?:public|private|protected|internal|static|final|abstract|sealed|partial|data|open)\s+)*(?:class|interface|enum|record|object|struct)\s+\w+`),
			regexp.MustCompile(`^\s{4}(?:(?:public|private|protected|internal|static|final|abstract|override|synchronized|async)\s+)+[\w<>\[\],\s]+\s+\w+\s*\(`),
			regexp.MustCompile(`^(?:(?:private|internal|public)\s+)?fun\s+\w+`),
		},
		Decorators:      []*regexp.Regexp{regexp.MustCompile(`^\s*@\w+`), regexp.MustCompile(`^\s*\[\w+`)},
		CommentPrefixes: slashComments,
	},
	{
		Name:       "rust",
		Aliases:    []string{"rs"},
		Extensions: []string{".rs"},
		Declarations: []*regexp.Regexp{
			regexp.MustCompile(`^(?:pub(?:\([^)]*\))?\s+)?(?:async\s+)?(?:unsafe\s+)?(?:const\s+)?(?:extern\s+"[^"]*"\s+)?fn\s+\w+`),
			regexp.MustCompile(`^(?:pub(?:\([^)]*\))?\s+)?(?:struct|enum|trait|union|type|mod)\s+\w+`),
			regexp.MustCompile(`^(?:unsafe\s+)?impl\b`),
		},
		Decorators:      []*regexp.Regexp{regexp.MustCompile(`^#!?\[`)},
		CommentPrefixes: []string{"///", "//!", "//"},
	},
	{
		Name:       "ruby",
		Aliases:    []string{"rb"},
		Extensions: []string{".rb"},
		Declarations: []*regexp.Regexp{
			regexp.MustCompile(`^\s{0,2}def\s+[\w.?!]+`),
			regexp.MustCompile(`^(?:class|module)\s+\w+`),
		},
		CommentPrefixes: hashComments,
	},
	{
		Name:       "shell",
		Aliases:    []string{"sh", "bash", "zsh"},
		Extensions: []string{".sh", ".bash", ".zsh"},
		Declarations: []*regexp.Regexp{
			regexp.MustCompile(`^function\s+[\w-]+`),
			regexp.MustCompile(`^[\w-]+\s*\(\)\s*\{?`),
		},
		CommentPrefixes: hashComments,
	},
	{
		Name:       "c",
		Aliases:    []string{"cpp", "c++", "cc", "h", "hpp"},
		Extensions: []string{".c", ".h", ".cc", ".cpp", ".hpp"},
		Declarations: []*regexp.Regexp{
			regexp.MustCompile(`^(?:static\s+|inline\s+|extern\s+|const\s+|unsigned\s+|virtual\s+)*[A-Za-z_][\w:<>*&\s]*\s+\**[A-Za-z_][\w:]*\s*\([^;]*$`),
			regexp.MustCompile(`^(?:typedef\s+)?(?:struct|class|enum|union|namespace)\s+\w+[^;]*$`),
		},
		Decorators:      []*regexp.Regexp{regexp.MustCompile(`^template\s*<`)},
		CommentPrefixes: slashComments,
	},
}

// Plugins returns a plugin for every built-in language.
func Plugins(logger *slog.Logger) []schema.ParserPlugin {
	plugins := make([]schema.ParserPlugin, 0, len(Languages))
	for _, lang := range Languages {
		plugins = append(plugins, NewPlugin(lang, logger.With("plugin", lang.Name)))
	}
	return plugins
}
