package sentiment

import (
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
)

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)

	// markupStartPattern matches a '<' that opens an HTML tag, comment or
	// autolink. Any other '<' is chat text, like "<3".
	markupStartPattern = regexp.MustCompile(`^<(?:/?[A-Za-z][A-Za-z0-9-]*(?:\s[^<>]*)?/?>|!--|[A-Za-z][A-Za-z0-9+.-]*:[^\s<>]*>|[^\s<>@]+@[^\s<>]+>)`)

	codeUnescaper = strings.NewReplacer(`\<`, "<", `\>`, ">", `\_`, "_", `\*`, "*")
)

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1") // Keep only the text
	return urlPattern.ReplaceAllString(input, "")
}

// ConvertMarkdownToText renders markdown down to the words a reader would
// see: link and image text survive, URLs, HTML tags and markup do not.
// Emoticons and identifiers that only look like markup are kept as typed.
func ConvertMarkdownToText(input string) string {
	root := blackfriday.New(blackfriday.WithNoExtensions()).Parse([]byte(escapeChatText(input)))

	var sb strings.Builder
	root.Walk(func(node *blackfriday.Node, entering bool) blackfriday.WalkStatus {
		switch node.Type {
		case blackfriday.Text:
			if entering {
				sb.Write(node.Literal)
			}
		case blackfriday.Code:
			if entering {
				sb.WriteString(codeUnescaper.Replace(string(node.Literal)))
			}
		case blackfriday.CodeBlock:
			if entering {
				sb.WriteByte(' ')
				sb.WriteString(codeUnescaper.Replace(string(node.Literal)))
				sb.WriteByte(' ')
			}
		case blackfriday.Softbreak, blackfriday.Hardbreak:
			sb.WriteByte(' ')
		case blackfriday.Paragraph, blackfriday.Heading, blackfriday.Item, blackfriday.BlockQuote,
			blackfriday.TableCell:
			if !entering {
				sb.WriteByte(' ')
			}
		}
		return blackfriday.GoToNext
	})

	plainText := strings.Join(strings.Fields(sb.String()), " ")
	return strings.Join(strings.Fields(RemoveLinks(plainText)), " ")
}

// escapeChatText backslash-escapes the characters blackfriday would eat
// from ordinary chat: a '<' that opens no tag, '_' and '*' inside a word,
// and a '>' starting an emoticon such as ">:(" at the start of a line.
func escapeChatText(input string) string {
	var sb strings.Builder
	sb.Grow(len(input) + 8)

	for i := 0; i < len(input); i++ {
		c := input[i]
		escaped := i > 0 && input[i-1] == '\\'

		switch {
		case escaped:
		case c == '<':
			if !markupStartPattern.MatchString(input[i:]) {
				sb.WriteByte('\\')
			}
		case c == '_' || c == '*':
			if i > 0 && i+1 < len(input) && isWordByte(input[i-1]) && isWordByte(input[i+1]) {
				sb.WriteByte('\\')
			}
		case c == '>':
			if startsLine(input, i) && i+1 < len(input) && strings.IndexByte(":;=", input[i+1]) >= 0 {
				sb.WriteByte('\\')
			}
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c >= 0x80
}

// startsLine reports whether only spaces sit between the previous newline
// and input[i].
func startsLine(input string, i int) bool {
	for j := i - 1; j >= 0; j-- {
		switch input[j] {
		case ' ', '\t':
		case '\n':
			return true
		default:
			return false
		}
	}
	return true
}
