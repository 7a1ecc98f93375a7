package highlight

import "github.com/alecthomas/chroma/v2"

// tokenClassMap is the scope-to-CSS-class table from §4.6b, adapted from
// TextMate scope prefixes to chroma's token-type hierarchy: chroma's
// dotted type categories (Comment, Comment.Single, ...) play the role a
// TextMate scope list plays for a grammar-driven tokenizer.
var tokenClassMap = map[chroma.TokenType]string{
	chroma.Comment:          "pl-c",
	chroma.CommentSingle:    "pl-c",
	chroma.CommentMultiline: "pl-c",
	chroma.CommentSpecial:   "pl-c",
	chroma.CommentPreproc:   "pl-c1",

	chroma.Keyword:            "pl-k",
	chroma.KeywordConstant:    "pl-c1",
	chroma.KeywordDeclaration: "pl-k",
	chroma.KeywordNamespace:   "pl-k",
	chroma.KeywordPseudo:      "pl-k",
	chroma.KeywordReserved:    "pl-k",
	chroma.KeywordType:        "pl-k",

	chroma.Name:                 "pl-v",
	chroma.NameAttribute:        "pl-e",
	chroma.NameBuiltin:          "pl-c1",
	chroma.NameBuiltinPseudo:    "pl-c1",
	chroma.NameClass:            "pl-en",
	chroma.NameConstant:         "pl-c1",
	chroma.NameDecorator:        "pl-e",
	chroma.NameEntity:           "pl-e",
	chroma.NameException:        "pl-en",
	chroma.NameFunction:         "pl-en",
	chroma.NameLabel:            "pl-v",
	chroma.NameNamespace:        "pl-v",
	chroma.NameOther:            "pl-v",
	chroma.NameTag:              "pl-ent",
	chroma.NameVariable:         "pl-smi",
	chroma.NameVariableClass:    "pl-smi",
	chroma.NameVariableGlobal:   "pl-smi",
	chroma.NameVariableInstance: "pl-smi",

	chroma.Literal:               "pl-s",
	chroma.LiteralDate:           "pl-s",
	chroma.LiteralString:         "pl-s",
	chroma.LiteralStringBacktick: "pl-s",
	chroma.LiteralStringChar:     "pl-s",
	chroma.LiteralStringDoc:      "pl-s",
	chroma.LiteralStringDouble:   "pl-s",
	chroma.LiteralStringEscape:   "pl-cce",
	chroma.LiteralStringInterpol: "pl-s",
	chroma.LiteralStringOther:    "pl-s",
	chroma.LiteralStringRegex:    "pl-sr",
	chroma.LiteralStringSingle:   "pl-s",
	chroma.LiteralStringSymbol:   "pl-s",
	chroma.LiteralNumber:         "pl-c1",
	chroma.LiteralNumberFloat:    "pl-c1",
	chroma.LiteralNumberHex:      "pl-c1",
	chroma.LiteralNumberInteger:  "pl-c1",
	chroma.LiteralNumberOct:      "pl-c1",

	chroma.Operator:     "pl-k",
	chroma.OperatorWord: "pl-k",
	chroma.Punctuation:  "pl-pds",

	chroma.GenericDeleted:    "pl-md",
	chroma.GenericEmph:       "pl-i",
	chroma.GenericError:      "pl-mi1",
	chroma.GenericHeading:    "pl-mh",
	chroma.GenericInserted:   "pl-mi1",
	chroma.GenericStrong:     "pl-b",
	chroma.GenericSubheading: "pl-mh",

	chroma.Error: "pl-mi1",
}

// cssClassFor picks the CSS class for a token, trying the exact type
// first, then its subcategory, then its top-level category: a
// deepest-first scope match.
func cssClassFor(t chroma.TokenType) string {
	if class, ok := tokenClassMap[t]; ok {
		return class
	}
	if class, ok := tokenClassMap[t.SubCategory()]; ok {
		return class
	}
	if class, ok := tokenClassMap[t.Category()]; ok {
		return class
	}
	return ""
}
