// Package musicxml emits a single voice of a score.Tune as a MusicXML
// document. It is a write-only bonus exporter alongside the mandatory
// round-trip text notation codec (internal/notation): MusicXML has no
// parser here, only emission, matching
// sergei-shchetnikov-go-cantus-firmus's original one-way
// GenerateAndSaveMusicXML helper.
//
// Grounded on sergei-shchetnikov-go-cantus-firmus's
// internal/musicxml/musicxml_generator.go (the XML struct types and
// xml.MarshalIndent usage are kept verbatim); only the conversion entry
// point changes, from its []music.Note sequences to walking a
// score.Voice's bars directly via pitch.Spelling.
package musicxml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"

	"go-cantus-firmus/internal/pitch"
	"go-cantus-firmus/internal/score"
)

// ScorePartwise represents the root element of a MusicXML score.
type ScorePartwise struct {
	XMLName  xml.Name `xml:"score-partwise"`
	PartList PartList `xml:"part-list"`
	Part     Part     `xml:"part"`
}

// PartList contains the score-parts.
type PartList struct {
	XMLName   xml.Name  `xml:"part-list"`
	ScorePart ScorePart `xml:"score-part"`
}

// ScorePart represents a single part in the score.
type ScorePart struct {
	XMLName  xml.Name `xml:"score-part"`
	ID       string   `xml:"id,attr"`
	PartName PartName `xml:"part-name"`
}

// PartName represents the name of a part.
type PartName struct {
	XMLName xml.Name `xml:"part-name"`
	Text    string   `xml:",chardata"`
}

// Part represents the musical content of a single part.
type Part struct {
	XMLName  xml.Name  `xml:"part"`
	ID       string    `xml:"id,attr"`
	Measures []Measure `xml:"measure"`
}

// Measure represents a single measure in a part.
type Measure struct {
	XMLName    xml.Name    `xml:"measure"`
	Number     int         `xml:"number,attr"`
	Attributes *Attributes `xml:"attributes,omitempty"`
	Direction  *Direction  `xml:"direction,omitempty"`
	Notes      []NoteXML   `xml:"note"`
	Barline    *Barline    `xml:"barline,omitempty"`
}

// Attributes contains musical attributes like divisions, key, time, and clef.
type Attributes struct {
	XMLName   xml.Name `xml:"attributes"`
	Divisions int      `xml:"divisions,omitempty"`
	Key       *Key     `xml:"key,omitempty"`
	Time      *Time    `xml:"time,omitempty"`
	Clef      *Clef    `xml:"clef,omitempty"`
}

// Key represents the key signature.
type Key struct {
	XMLName xml.Name `xml:"key"`
	Fifths  int      `xml:"fifths"`
}

// Time represents the time signature.
type Time struct {
	XMLName  xml.Name `xml:"time"`
	Beats    string   `xml:"beats"`
	BeatType string   `xml:"beat-type"`
}

// Clef represents the clef.
type Clef struct {
	XMLName xml.Name `xml:"clef"`
	Sign    string   `xml:"sign"`
	Line    int      `xml:"line"`
}

// NoteXML represents a musical note, or a rest when Rest is non-nil.
type NoteXML struct {
	XMLName  xml.Name `xml:"note"`
	Pitch    *Pitch   `xml:"pitch,omitempty"`
	Rest     *Rest    `xml:"rest,omitempty"`
	Duration int      `xml:"duration"`
	Type     string   `xml:"type"`
}

// Rest marks a NoteXML as a rest rather than a pitched note.
type Rest struct {
	XMLName xml.Name `xml:"rest"`
}

// Pitch represents the pitch of a note.
type Pitch struct {
	XMLName xml.Name `xml:"pitch"`
	Step    string   `xml:"step"`
	Alter   *int     `xml:"alter,omitempty"`
	Octave  int      `xml:"octave"`
}

// Barline represents a barline element.
type Barline struct {
	XMLName  xml.Name `xml:"barline"`
	Location string   `xml:"location,attr"`
	BarStyle BarStyle `xml:"bar-style"`
}

// BarStyle represents the style of the barline.
type BarStyle struct {
	XMLName xml.Name `xml:"bar-style"`
	Text    string   `xml:",chardata"`
}

// Direction represents a musical direction, e.g., tempo.
type Direction struct {
	XMLName       xml.Name      `xml:"direction"`
	Placement     string        `xml:"placement,attr"`
	DirectionType DirectionType `xml:"direction-type"`
	Sound         *Sound        `xml:"sound,omitempty"`
}

// DirectionType contains different types of directions.
type DirectionType struct {
	XMLName   xml.Name   `xml:"direction-type"`
	Metronome *Metronome `xml:"metronome,omitempty"`
}

// Metronome represents a metronome mark for tempo.
type Metronome struct {
	XMLName   xml.Name `xml:"metronome"`
	BeatUnit  string   `xml:"beat-unit"`
	PerMinute int      `xml:"per-minute"`
}

// Sound contains sound-related attributes, e.g., tempo.
type Sound struct {
	XMLName xml.Name `xml:"sound"`
	Tempo   float64  `xml:"tempo,attr"`
}

var stepNames = map[byte]string{'A': "A", 'B': "B", 'C': "C", 'D': "D", 'E': "E", 'F': "F", 'G': "G"}

// noteFromObject converts one score.Object to a NoteXML, emitting a rest
// when the object is a pause. divisions is the number of MusicXML
// "duration" ticks per quarter note (so a bar object's duration, already
// in the tune's unit, is rescaled to it).
func noteFromObject(o *score.Object, divisions, unit int) (NoteXML, error) {
	ticksPerUnit := divisions * 4 / unit
	note := NoteXML{Duration: o.Duration * ticksPerUnit, Type: durationType(o.Duration, unit)}
	if o.IsPause() {
		note.Rest = &Rest{}
		return note, nil
	}
	letter, accidental, octave, err := pitch.Spelling(o.Halftone)
	if err != nil {
		return NoteXML{}, err
	}
	var alter *int
	if accidental != 0 {
		a := accidental
		alter = &a
	}
	note.Pitch = &Pitch{Step: stepNames[letter], Alter: alter, Octave: octave}
	return note, nil
}

// durationType maps a bar-object duration (as a fraction of the bar's
// unit) to the nearest MusicXML note-type name.
func durationType(duration, unit int) string {
	switch {
	case duration >= unit:
		return "whole"
	case duration*2 >= unit:
		return "half"
	case duration*4 >= unit:
		return "quarter"
	case duration*8 >= unit:
		return "eighth"
	default:
		return "16th"
	}
}

// FromVoice renders one voice of tune as a MusicXML document. partName
// labels the <part-name> element (e.g. "Cantus Firmus", "Contrapunctus").
func FromVoice(tune *score.Tune, voice *score.Voice, partName string) (string, error) {
	if len(voice.Bars) == 0 {
		return "", errors.New("musicxml: voice has no bars")
	}
	const divisions = 4

	var measures []Measure
	for i, bar := range voice.Bars {
		var notes []NoteXML
		for _, o := range bar.Objects {
			n, err := noteFromObject(o, divisions, tune.Unit)
			if err != nil {
				return "", fmt.Errorf("musicxml: bar %d: %w", i, err)
			}
			notes = append(notes, n)
		}

		measure := Measure{Number: i + 1, Notes: notes}
		if i == len(voice.Bars)-1 {
			measure.Barline = &Barline{Location: "right", BarStyle: BarStyle{Text: "light-heavy"}}
		}
		if i == 0 {
			fifths := 0
			if tune.Key != nil {
				fifths = tune.Key.FifthOffset
			}
			measure.Attributes = &Attributes{
				Divisions: divisions,
				Key:       &Key{Fifths: fifths},
				Time:      &Time{Beats: "4", BeatType: "4"},
				Clef:      &Clef{Sign: "G", Line: 2},
			}
		}
		measures = append(measures, measure)
	}

	doc := ScorePartwise{
		PartList: PartList{ScorePart: ScorePart{ID: "P1", PartName: PartName{Text: partName}}},
		Part:     Part{ID: "P1", Measures: measures},
	}

	output, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("musicxml: marshal: %w", err)
	}
	return xml.Header + string(output), nil
}

// WriteVoice renders and saves one voice of tune to filename.
func WriteVoice(tune *score.Tune, voice *score.Voice, partName, filename string) error {
	doc, err := FromVoice(tune, voice, partName)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, []byte(doc), 0644); err != nil {
		return fmt.Errorf("musicxml: write %s: %w", filename, err)
	}
	return nil
}
