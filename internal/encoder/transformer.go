// =============================================================================
// ColorMe to Yayoi Converter - Field Transformations
// =============================================================================
//
// Field-level conversions applied while building Yayoi records:
//   - Full-width katakana to half-width katakana (フリガナ column)
//   - Address split into 住所1 / 住所2
//   - Postal code reduced to digits
//   - Zero padding of document numbers
//
// =============================================================================

package encoder

import (
	"fmt"
	"regexp"
	"strings"
)

// =============================================================================
// HALF-WIDTH KATAKANA
// =============================================================================

// halfWidthKana maps full-width katakana and punctuation to their
// half-width forms. Voiced and semi-voiced kana map to two characters.
var halfWidthKana = map[rune]string{
	'ガ': "ｶﾞ", 'ギ': "ｷﾞ", 'グ': "ｸﾞ", 'ゲ': "ｹﾞ", 'ゴ': "ｺﾞ",
	'ザ': "ｻﾞ", 'ジ': "ｼﾞ", 'ズ': "ｽﾞ", 'ゼ': "ｾﾞ", 'ゾ': "ｿﾞ",
	'ダ': "ﾀﾞ", 'ヂ': "ﾁﾞ", 'ヅ': "ﾂﾞ", 'デ': "ﾃﾞ", 'ド': "ﾄﾞ",
	'バ': "ﾊﾞ", 'ビ': "ﾋﾞ", 'ブ': "ﾌﾞ", 'ベ': "ﾍﾞ", 'ボ': "ﾎﾞ",
	'パ': "ﾊﾟ", 'ピ': "ﾋﾟ", 'プ': "ﾌﾟ", 'ペ': "ﾍﾟ", 'ポ': "ﾎﾟ",
	'ヴ': "ｳﾞ", 'ヷ': "ﾜﾞ", 'ヺ': "ｦﾞ",
	'ア': "ｱ", 'イ': "ｲ", 'ウ': "ｳ", 'エ': "ｴ", 'オ': "ｵ",
	'カ': "ｶ", 'キ': "ｷ", 'ク': "ｸ", 'ケ': "ｹ", 'コ': "ｺ",
	'サ': "ｻ", 'シ': "ｼ", 'ス': "ｽ", 'セ': "ｾ", 'ソ': "ｿ",
	'タ': "ﾀ", 'チ': "ﾁ", 'ツ': "ﾂ", 'テ': "ﾃ", 'ト': "ﾄ",
	'ナ': "ﾅ", 'ニ': "ﾆ", 'ヌ': "ﾇ", 'ネ': "ﾈ", 'ノ': "ﾉ",
	'ハ': "ﾊ", 'ヒ': "ﾋ", 'フ': "ﾌ", 'ヘ': "ﾍ", 'ホ': "ﾎ",
	'マ': "ﾏ", 'ミ': "ﾐ", 'ム': "ﾑ", 'メ': "ﾒ", 'モ': "ﾓ",
	'ヤ': "ﾔ", 'ユ': "ﾕ", 'ヨ': "ﾖ",
	'ラ': "ﾗ", 'リ': "ﾘ", 'ル': "ﾙ", 'レ': "ﾚ", 'ロ': "ﾛ",
	'ワ': "ﾜ", 'ヲ': "ｦ", 'ン': "ﾝ",
	'ァ': "ｧ", 'ィ': "ｨ", 'ゥ': "ｩ", 'ェ': "ｪ", 'ォ': "ｫ",
	'ッ': "ｯ", 'ャ': "ｬ", 'ュ': "ｭ", 'ョ': "ｮ",
	'ー': "ｰ", '・': "･", '「': "｢", '」': "｣", '。': "｡", '、': "､", '　': " ",
}

// ToHalfWidthKatakana converts full-width katakana to half-width katakana.
// Characters without a mapping (hiragana, kanji, Latin) pass through.
//
// EXAMPLE:
//
//	Input:  "ヤマダ　ガロウ"
//	Output: "ﾔﾏﾀﾞ ｶﾞﾛｳ"
func ToHalfWidthKatakana(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if half, ok := halfWidthKana[r]; ok {
			b.WriteString(half)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// =============================================================================
// ADDRESS SPLIT
// =============================================================================

// addressPattern captures everything up to the last digit (half- or
// full-width) followed by whitespace, and the remainder after it.
var addressPattern = regexp.MustCompile(`^(.+[0-9０-９])[\s\x{3000}]+(.+)$`)

// SplitAddress joins prefecture and address and splits the result into the
// street part (up to the last number followed by a space) and the building
// part. Without such a split point the whole string is line 1.
//
// EXAMPLE:
//
//	Input:  "東京都", "渋谷区1-2-3 マンション101"
//	Output: "東京都渋谷区1-2-3", "マンション101"
func SplitAddress(prefecture, address string) (line1, line2 string) {
	full := prefecture + address
	m := addressPattern.FindStringSubmatch(full)
	if m == nil {
		return full, ""
	}
	return m[1], m[2]
}

// =============================================================================
// SMALL HELPERS
// =============================================================================

// zipDigits removes hyphens from a postal code ("150-0001" -> "1500001").
func zipDigits(zip string) string {
	return strings.ReplaceAll(zip, "-", "")
}

// padNumber renders n zero-padded to width digits.
func padNumber(n, width int) string {
	return fmt.Sprintf("%0*d", width, n)
}
