package rule

import "strings"

// DefaultRules is the rule text new configurations start from.
var DefaultRules = strings.Join([]string{
	``,
	`# Line head conversion`,
	`# Note: this rule can't apply to the very first line of the document`,
	`'\n》|' -> '\n>|'`,
	`'\n、|' -> '\n/|'`,
	``,
	`# CN symbols to EN`,
	`'。。|' -> '.|'`,
	`'》》|' -> '>|'`,
	`'、、|' -> '/|'`,
	`'；；|' -> ';|'`,
	`'，，|' -> ',|'`,
	``,
	`# Auto-pair, Input Conversion, and Deletion`,
	`'《《|》' -> '<|' # this one take higer priority than the next line`,
	`'《|'    -> '《|》'`,
	`'《|》'   -x '|'`,
	`'（（|）' -> '(|)'`,
	`'（|'     -> '（|）'`,
	`'（|）'   -x '|'`,
	``,
	`# Auto code block`,
	"'··|'  -> '`|`' # inline block",
	"'`·|`' -> '```|\\n```'",
	``,
	`# have fun converting!`,
	`'dpx|' -> 'don\'t panic|'`,
	``,
	``,
	`# Selection Insert Rules`,
	"'·'  -> '`' + '`'",
	`'￥'  -> '$' + '$'`,
	`'《'  -> '《' + '》'`,
	`'<'  -> '<' + '>'`,
	``,
}, "\n")
