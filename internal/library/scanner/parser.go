package scanner

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Release is a release or file name broken down into the parts the checker
// compares: title, year, season/episode markers and release characteristics.
type Release struct {
	Name             string   `json:"name"`
	Title            string   `json:"title"`
	Year             int      `json:"year,omitempty"`
	Season           int      `json:"season,omitempty"`           // 0 for movies or complete series
	EndSeason        int      `json:"endSeason,omitempty"`        // multi-season packs (S01-S04)
	Episode          int      `json:"episode,omitempty"`          // 0 for movies or season packs
	EndEpisode       int      `json:"endEpisode,omitempty"`       // multi-episode files
	IsSeasonPack     bool     `json:"isSeasonPack,omitempty"`     // S01 without episode
	IsCompleteSeries bool     `json:"isCompleteSeries,omitempty"` // boxsets
	IsTV             bool     `json:"isTv"`
	Quality          string   `json:"quality,omitempty"`
	Resolution       int      `json:"resolution,omitempty"`
	Source           string   `json:"source,omitempty"`
	Codec            string   `json:"codec,omitempty"`
	Languages        []string `json:"languages,omitempty"`
	Group            string   `json:"group,omitempty"`
	FilePath         string   `json:"filePath,omitempty"`
}

type namedPattern struct {
	name string
	re   *regexp.Regexp
}

// tagPattern matches expr only as a whole separator-delimited word.
func tagPattern(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^a-z0-9])(?:` + expr + `)(?:$|[^a-z0-9])`)
}

var (
	// Show.S01E02, Show.S01E01E02, Show.S01E01-E02
	tvPatternSE = regexp.MustCompile(`(?i)^(.+?)[\.\s_-]+[Ss](\d{1,2})[Ee](\d{1,3})(?:-?[Ee](\d{1,3}))?(?:[\.\s_-]+(.*))?$`)
	// Show.1x02
	tvPatternX = regexp.MustCompile(`(?i)^(.+?)[\.\s_-]+(\d{1,2})[xX](\d{1,3})(?:[\.\s_-]+(.*))?$`)
	// Show.S01-04 or Show.S01-S04
	tvPatternSeasonRange = regexp.MustCompile(`(?i)^(.+?)[\.\s_-]+[Ss](\d{1,2})-[Ss]?(\d{1,2})(?:[\.\s_-]+(.*))?$`)
	// Show.S01
	tvPatternSeasonPack = regexp.MustCompile(`(?i)^(.+?)[\.\s_-]+[Ss](\d{1,2})(?:[\.\s_-]+(.*))?$`)
	// Show.Season.1, Show Saison 02
	tvPatternSeasonSpelled = regexp.MustCompile(`(?i)^(.+?)[\.\s_-]+(?:season|saison)[\.\s_-]*(\d{1,2})(?:[\.\s_-]+(.*))?$`)
	// Show.COMPLETE, Show.Integrale; any S## form is handled above
	tvPatternComplete = regexp.MustCompile(`(?i)^(.+?)[\.\s_-]+(?:the[\.\s_-]+)?(?:complete|integrale)(?:[\.\s_-]+series)?(?:[\.\s_-]+(.*))?$`)

	// trailing year on a series title: Show.2019.S01
	titleYearSuffix = regexp.MustCompile(`^(.+?)[\.\s_-]+\(?((?:19|20)\d{2})\)?$`)

	nameToken = regexp.MustCompile(`[^\.\s_\-\(\)\[\]]+`)
	yearToken = regexp.MustCompile(`^(?:19|20)\d{2}$`)

	// tokens that only ever describe a release; the first one ends the title
	strongBoundaryToken = regexp.MustCompile(`(?i)^(?:\d{3,4}[pi]|4k|webdl|webrip|bluray|bdrip|brrip|bdremux|hdtv|hdrip|hdlight|dvdrip|remux|x26[45]|h26[45]|hevc|xvid|10bit)$`)
	// release words that are also ordinary title words ("The French Dispatch",
	// "Charlotte's Web"); they only end a title when another tag follows
	weakBoundaryToken = regexp.MustCompile(`(?i)^(?:uhd|web|dl|blu|ray|avc|multi|truefrench|french|vff|vfq|vfi|vf2?|vostfr)$`)

	groupPattern   = regexp.MustCompile(`-([A-Za-z0-9]+)(?:\[[^\]]*\])?$`)
	cleanupPattern = regexp.MustCompile(`[\.\s_\-\(\)\[\]]+`)

	qualityPatterns = []namedPattern{
		{"2160p", tagPattern(`2160p|4k|uhd`)},
		{"1080p", tagPattern(`1080[pi]`)},
		{"720p", tagPattern(`720p`)},
		{"576p", tagPattern(`576p`)},
		{"480p", tagPattern(`480p|sd`)},
	}

	sourcePatterns = []namedPattern{
		{"Remux", tagPattern(`remux|bdremux`)},
		{"BluRay", tagPattern(`blu-?ray|bdrip|brrip|bd`)},
		{"WEB-DL", tagPattern(`web-?dl|webdl`)},
		{"WEBRip", tagPattern(`web-?rip`)},
		{"WEB", tagPattern(`web`)},
		{"HDTV", tagPattern(`hdtv`)},
		{"HDRip", tagPattern(`hdrip`)},
		{"DVDRip", tagPattern(`dvdrip|dvd-?r|dvd`)},
		{"CAM", tagPattern(`cam|hdcam|telesync`)},
	}

	codecPatterns = []namedPattern{
		{"x265", tagPattern(`x265|h\.?265|hevc`)},
		{"x264", tagPattern(`x264|h\.?264|avc`)},
		{"AV1", tagPattern(`av1`)},
		{"XviD", tagPattern(`xvid`)},
	}

	// most specific first; VF alone only when nothing narrower matched
	languagePatterns = []namedPattern{
		{"MULTI", tagPattern(`multi`)},
		{"TRUEFRENCH", tagPattern(`truefrench`)},
		{"VFF", tagPattern(`vff`)},
		{"VFQ", tagPattern(`vfq`)},
		{"VF2", tagPattern(`vf2`)},
		{"VFI", tagPattern(`vfi`)},
		{"VF", tagPattern(`vf`)},
		{"FRENCH", tagPattern(`french`)},
		{"VOSTFR", tagPattern(`vostfr`)},
	}
)

// ParseRelease parses a tracker release name. Unlike ParseFilename it never
// strips an extension, so names like "...EAC3.5.1-Group" keep their tail.
func ParseRelease(name string) *Release {
	name = strings.TrimSpace(name)
	parsed := &Release{Name: name}
	if name == "" {
		return parsed
	}

	if rest, ok := parseTV(name, parsed); ok {
		parseQualityInfo(rest, parsed)
		return parsed
	}

	rest := parseMovie(name, parsed)
	parseQualityInfo(rest, parsed)
	return parsed
}

// ParseFilename parses a media file name, dropping a known video extension.
func ParseFilename(filename string) *Release {
	name := filename
	if IsVideoFile(filename) {
		name = strings.TrimSuffix(filename, filepath.Ext(filename))
	}
	parsed := ParseRelease(name)
	parsed.FilePath = filename
	return parsed
}

// ParsePath parses a file path, falling back to the parent folder for the
// title and year of movies whose file name lacks a year, as in
// "The Matrix (1999)/The.Matrix.1080p.BluRay.mkv".
func ParsePath(fullPath string) *Release {
	parsed := ParseFilename(filepath.Base(fullPath))

	if !parsed.IsTV && parsed.Year == 0 {
		folder := ParseRelease(filepath.Base(filepath.Dir(fullPath)))
		if folder.Year != 0 && folder.Title != "" {
			parsed.Year = folder.Year
			parsed.Title = folder.Title
		}
	}

	parsed.FilePath = fullPath
	return parsed
}

// CoversSeason reports whether the release contains the whole of season n.
func (r *Release) CoversSeason(n int) bool {
	if !r.IsTV || r.Episode != 0 {
		return false
	}
	if r.IsCompleteSeries && r.Season == 0 {
		return true
	}
	if r.EndSeason > 0 {
		return n >= r.Season && n <= r.EndSeason
	}
	return r.Season == n
}

// CoversEpisode reports whether the release contains the given episode,
// either as the episode itself, a multi-episode file or a pack.
func (r *Release) CoversEpisode(season, episode int) bool {
	if !r.IsTV {
		return false
	}
	if r.Episode == 0 {
		return r.CoversSeason(season)
	}
	if r.Season != season {
		return false
	}
	if r.EndEpisode > 0 {
		return episode >= r.Episode && episode <= r.EndEpisode
	}
	return r.Episode == episode
}

func parseTV(name string, parsed *Release) (string, bool) {
	if m := tvPatternSE.FindStringSubmatch(name); m != nil {
		setSeriesTitle(m[1], parsed)
		parsed.Season = atoi(m[2])
		parsed.Episode = atoi(m[3])
		parsed.EndEpisode = atoi(m[4])
		parsed.IsTV = true
		return m[5], true
	}

	if m := tvPatternX.FindStringSubmatch(name); m != nil {
		setSeriesTitle(m[1], parsed)
		parsed.Season = atoi(m[2])
		parsed.Episode = atoi(m[3])
		parsed.IsTV = true
		return m[4], true
	}

	// ranges before single packs so S01 does not match prematurely
	if m := tvPatternSeasonRange.FindStringSubmatch(name); m != nil {
		setSeriesTitle(m[1], parsed)
		parsed.Season = atoi(m[2])
		parsed.EndSeason = atoi(m[3])
		parsed.IsTV = true
		parsed.IsSeasonPack = true
		parsed.IsCompleteSeries = true
		return m[4], true
	}

	if m := tvPatternSeasonPack.FindStringSubmatch(name); m != nil {
		setSeriesTitle(m[1], parsed)
		parsed.Season = atoi(m[2])
		parsed.IsTV = true
		parsed.IsSeasonPack = true
		return m[3], true
	}

	if m := tvPatternSeasonSpelled.FindStringSubmatch(name); m != nil {
		setSeriesTitle(m[1], parsed)
		parsed.Season = atoi(m[2])
		parsed.IsTV = true
		parsed.IsSeasonPack = true
		return m[3], true
	}

	if m := tvPatternComplete.FindStringSubmatch(name); m != nil {
		setSeriesTitle(m[1], parsed)
		parsed.IsTV = true
		parsed.IsSeasonPack = true
		parsed.IsCompleteSeries = true
		return m[2], true
	}

	return "", false
}

func setSeriesTitle(raw string, parsed *Release) {
	if m := titleYearSuffix.FindStringSubmatch(raw); m != nil {
		parsed.Title = cleanTitle(m[1])
		parsed.Year = atoi(m[2])
		return
	}
	parsed.Title = cleanTitle(raw)
}

// parseMovie sets title and year and returns the remainder of the name. The
// year is the last year-like token before the release characteristics, so
// "Blade.Runner.2049.2017" and "1917.2019" keep the number in the title, and
// words such as "French" or "Web" before the year stay in the title.
func parseMovie(name string, parsed *Release) string {
	tokens := nameToken.FindAllStringIndex(name, -1)
	word := func(i int) string {
		return name[tokens[i][0]:tokens[i][1]]
	}

	strong := len(tokens)
	for i := 1; i < len(tokens); i++ {
		if strongBoundaryToken.MatchString(word(i)) {
			strong = i
			break
		}
	}

	for i := strong - 1; i > 0; i-- {
		if yearToken.MatchString(word(i)) {
			parsed.Title = cleanTitle(name[:tokens[i][0]])
			parsed.Year = atoi(word(i))
			return name[tokens[i][1]:]
		}
	}

	// without a year, a weak tag ends the title only when it is followed by
	// another tag or by the release group
	group := len(tokens)
	if groupPattern.MatchString(name) {
		group = len(tokens) - 1
	}
	boundary := strong
	for i := 1; i < strong; i++ {
		if !weakBoundaryToken.MatchString(word(i)) {
			continue
		}
		next := i + 1
		if next == strong || next == group ||
			(next < len(tokens) && weakBoundaryToken.MatchString(word(next))) {
			boundary = i
			break
		}
	}

	if boundary < len(tokens) {
		parsed.Title = cleanTitle(name[:tokens[boundary][0]])
		return name[tokens[boundary][0]:]
	}

	parsed.Title = cleanTitle(name)
	return ""
}

// cleanTitle replaces separators with single spaces.
func cleanTitle(title string) string {
	return strings.TrimSpace(cleanupPattern.ReplaceAllString(title, " "))
}

// parseQualityInfo extracts quality, source, codec, languages and group from
// the part of the name that follows the title markers.
func parseQualityInfo(text string, parsed *Release) {
	if text == "" {
		return
	}

	if q := firstMatch(qualityPatterns, text); q != "" {
		parsed.Quality = q
		parsed.Resolution = atoi(strings.TrimSuffix(q, "p"))
	}
	parsed.Source = firstMatch(sourcePatterns, text)
	parsed.Codec = firstMatch(codecPatterns, text)

	for _, p := range languagePatterns {
		if p.name == "VF" && len(parsed.Languages) > 0 {
			continue
		}
		if p.re.MatchString(text) {
			parsed.Languages = append(parsed.Languages, p.name)
		}
	}

	if m := groupPattern.FindStringSubmatch(text); m != nil {
		parsed.Group = m[1]
	}
}

func firstMatch(patterns []namedPattern, text string) string {
	for _, p := range patterns {
		if p.re.MatchString(text) {
			return p.name
		}
	}
	return ""
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
