// Package matching compares catalog titles with tracker release names.
package matching

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// French elision: l'été, d'artagnan, qu'il -> word boundary
	elisionRegex    = regexp.MustCompile(`\b(qu|[cdjlmnst])['\x60\x{2018}\x{2019}\x{02BC}]`)
	apostropheRegex = regexp.MustCompile(`['\x60\x{2018}\x{2019}\x{02BC}]`)

	// (2019), [MULTi], (VFF) ...
	bracketTagRegex = regexp.MustCompile(`[\(\[\{]\s*(?:(?:19|20)\d{2}|multi|truefrench|french|vostfr|vff|vfq|vfi|vf2|vf|vo|fr|en|eng)\s*[\)\]\}]`)

	// tags written with inner separators
	joinedTagRegex = regexp.MustCompile(`\b[hx][^a-z0-9]+26[45]\b|\bblu[^a-z0-9]+ray\b|\bweb[^a-z0-9]+(?:dl|rip)\b|\bdts[^a-z0-9]+hd\b`)
	nonAlnumRegex  = regexp.MustCompile(`[^a-z0-9]+`)

	tokenRegex = regexp.MustCompile(`[a-z0-9]+`)

	resolutionToken = regexp.MustCompile(`^(?:\d{3,4}[pi]|[48]k)$`)
	audioToken      = regexp.MustCompile(`^(?:ddp|dd|eac3|ac3|aac|dts|dtshd|truehd|atmos|flac|opus|mp3)\d*$`)
	yearLikeToken   = regexp.MustCompile(`^(?:19|20)\d{2}$`)
	markerToken     = regexp.MustCompile(`^(?:s\d{1,2}(?:e\d{1,3}){0,2}|e\d{1,3}|\d{1,2}x\d{1,3})$`)
)

// hardTags identify release characteristics wherever they occur. Everything
// from the first hard tag on is treated as release metadata.
var hardTags = map[string]bool{
	"uhd": true, "hdr": true, "hdr10": true, "hdr10plus": true, "dv": true, "dovi": true, "sdr": true,
	"10bit": true, "8bit": true,
	"web": true, "webdl": true, "blu": true, "webrip": true, "dl": true, "bluray": true, "bdrip": true, "brrip": true,
	"bdremux": true, "remux": true, "hdtv": true, "hdrip": true, "dvdrip": true, "hdlight": true, "mhd": true,
	"x264": true, "x265": true, "h264": true, "h265": true, "hevc": true, "avc": true, "av1": true, "xvid": true,
	"264": true, "265": true,
}

// softTags are language and edition words. They only count as tags once the
// title has ended (after a year, a season marker or a hard tag) so that a
// title like "The French Connection" survives.
var softTags = map[string]bool{
	"multi": true, "vf": true, "vf2": true, "vff": true, "vfq": true, "vfi": true, "vo": true, "vof": true,
	"vost": true, "vostfr": true, "truefrench": true, "french": true, "subfrench": true, "english": true,
	"extended": true, "proper": true, "repack": true, "complete": true, "internal": true, "uncut": true,
	"unrated": true, "remastered": true, "limited": true, "imax": true, "hybrid": true, "integrale": true,
}

// Normalize canonicalizes a title or release name into space separated
// lower-case ASCII tokens. Diacritics and punctuation are removed, known
// release tags are dropped, and year-like tokens and season markers are kept.
// Normalize is idempotent.
func Normalize(text string) string {
	s := joinedTagRegex.ReplaceAllStringFunc(fold(text), func(m string) string {
		return nonAlnumRegex.ReplaceAllString(m, "")
	})
	return strings.Join(stripTags(tokenRegex.FindAllString(s, -1)), " ")
}

// NormalizeTitle canonicalizes a title that carries no release metadata,
// such as a catalog title or the title part of a parsed release. It folds
// case, diacritics and punctuation like Normalize but keeps every word, so
// "Opus" or "Charlotte's Web" are not mistaken for release tags.
// NormalizeTitle is idempotent.
func NormalizeTitle(text string) string {
	return strings.Join(tokenRegex.FindAllString(fold(text), -1), " ")
}

func fold(text string) string {
	s := strings.ToLower(text)
	s = foldDiacritics(s)
	s = strings.ToLower(unidecode.Unidecode(s))
	s = elisionRegex.ReplaceAllString(s, "$1 ")
	s = apostropheRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&", " and ")
	return bracketTagRegex.ReplaceAllString(s, " ")
}

// Tokens returns the tokens of the normalized form of text.
func Tokens(text string) []string {
	return strings.Fields(Normalize(text))
}

func stripTags(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	titleEnded := false
	inMetadata := false

	for _, tok := range tokens {
		switch {
		case len(out) == 0 && !inMetadata && !yearLikeToken.MatchString(tok) && !markerToken.MatchString(tok):
			// the first word is always title ("Opus", "Remux")
			out = append(out, tok)
			continue
		case isHardTag(tok):
			titleEnded = true
			inMetadata = true
			continue
		case yearLikeToken.MatchString(tok), markerToken.MatchString(tok):
			// a leading year is a title ("1917", "2012")
			if len(out) > 0 || inMetadata {
				titleEnded = true
			}
			out = append(out, tok)
			continue
		case inMetadata:
			continue
		case titleEnded && softTags[tok]:
			continue
		}
		out = append(out, tok)
	}
	return out
}

func isHardTag(tok string) bool {
	return hardTags[tok] || resolutionToken.MatchString(tok) || audioToken.MatchString(tok)
}

func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
