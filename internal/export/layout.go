package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bandstand-io/bandstand/internal/domain"
)

type fontClass int

const (
	// fontSmall is used for the song number, separators and the "bpm"
	// label; fontLarge for the title, the BPM value and the key.
	fontSmall fontClass = iota
	fontLarge
)

type segment struct {
	text string
	font fontClass
}

// lineSegments composes the printed segments for one song line in the
// form "<number>. <title> - <bpm> bpm • <key>". The BPM segment is
// omitted when ShowBPM is false or the song has no tempo; the key
// segment is omitted when ShowKey is false or the song has no key.
// number is the continuous 1-based position across the whole document.
func lineSegments(number int, song domain.Song, opts Options) []segment {
	segs := []segment{
		{text: fmt.Sprintf("%d. ", number), font: fontSmall},
		{text: song.Title, font: fontLarge},
	}
	if opts.ShowBPM && song.BPM > 0 {
		segs = append(segs,
			segment{text: " - ", font: fontSmall},
			segment{text: strconv.Itoa(song.BPM), font: fontLarge},
			segment{text: " bpm", font: fontSmall},
		)
	}
	if opts.ShowKey && song.Key != "" {
		segs = append(segs,
			segment{text: " • ", font: fontSmall},
			segment{text: song.Key, font: fontLarge},
		)
	}
	return segs
}

// lineText returns the plain text of a composed line.
func lineText(number int, song domain.Song, opts Options) string {
	var b strings.Builder
	for _, seg := range lineSegments(number, song, opts) {
		b.WriteString(seg.text)
	}
	return b.String()
}

// paginate splits songs into chunks of at most capacity, preserving
// order. Page count is ceil(len/capacity).
func paginate(songs []domain.Song, capacity int) [][]domain.Song {
	if capacity <= 0 || len(songs) == 0 {
		return nil
	}
	pages := make([][]domain.Song, 0, (len(songs)+capacity-1)/capacity)
	for start := 0; start < len(songs); start += capacity {
		end := start + capacity
		if end > len(songs) {
			end = len(songs)
		}
		pages = append(pages, songs[start:end])
	}
	return pages
}

// lineSpacing distributes the leftover vertical space evenly between
// the page's lines, with a floor so crowded pages stay legible.
func lineSpacing(available, lineHeight float64, count int) float64 {
	if count <= 0 {
		return 0
	}
	spacing := (available - float64(count)*lineHeight) / float64(count)
	if spacing < minLineSpacing {
		return minLineSpacing
	}
	return spacing
}
