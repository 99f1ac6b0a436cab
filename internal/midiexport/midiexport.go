// Package midiexport writes a score.Tune out as a Standard MIDI File. It
// is write-only: a bonus output format alongside the mandatory
// round-trip text notation codec (internal/notation), useful for
// listening to a generated counterpoint rather than just reading it.
//
// Grounded on ako-backing-tracks/midi/generator.go's smf.New() /
// smf.Track.Add(delta, message) / midi.NoteOn / midi.NoteOff pattern:
// one meta track carrying tempo, one note track per voice, events
// expressed as MIDI ticks and converted to the deltas Track.Add expects.
package midiexport

import (
	"fmt"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"go-cantus-firmus/internal/score"
)

// ticksPerQuarter is the MIDI resolution used for one quarter note, at a
// fixed 480 ticks (matching the grounding example).
const ticksPerQuarter = 480

// midiNote converts a halftone offset to a MIDI note number, anchored so
// offset 0 ("A" with no marks, pitch.Spelling octave 3) is MIDI 57 (A3),
// making offset 12 ("a") MIDI 69 (A4) as scientific pitch notation expects.
func midiNote(offset int) uint8 {
	n := 57 + offset
	if n < 0 {
		n = 0
	}
	if n > 127 {
		n = 127
	}
	return uint8(n)
}

type event struct {
	tick    uint32
	message midi.Message
}

// continuesTie reports whether o is itself the continuation of a tie
// chain, so it must not retrigger a NoteOn.
func continuesTie(o *score.Object) bool {
	prev := o.Prev()
	return prev != nil && prev.Bind && !prev.IsPause()
}

// endsInTie reports whether o is bound to (tied into) its successor, so
// its NoteOff should be deferred to the object that ends the chain.
func endsInTie(o *score.Object) bool { return o.Bind }

// Write renders tune as a Standard MIDI File to filename, one MIDI track
// per voice, at the given tempo in quarter notes per minute.
func Write(tune *score.Tune, filename string, tempoQPM float64) error {
	if tune.Unit == 0 {
		return fmt.Errorf("midiexport: tune has no unit set")
	}
	ticksPerUnit := uint32(ticksPerQuarter * 4 / tune.Unit)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	var meta smf.Track
	meta.Add(0, smf.MetaTempo(tempoQPM))
	meta.Close(0)
	s.Add(meta)

	for ch, voice := range tune.Voices {
		var events []event
		tick := uint32(0)
		for _, bar := range voice.Bars {
			for _, o := range bar.Objects {
				duration := ticksPerUnit * uint32(o.Duration)
				if !o.IsPause() {
					note := midiNote(o.Halftone.Offset)
					if !continuesTie(o) {
						events = append(events, event{tick, midi.NoteOn(uint8(ch), note, 80)})
					}
					if !endsInTie(o) {
						events = append(events, event{tick + duration, midi.NoteOff(uint8(ch), note)})
					}
				}
				tick += duration
			}
		}

		sort.SliceStable(events, func(i, j int) bool { return events[i].tick < events[j].tick })

		var track smf.Track
		track.Add(0, midi.ProgramChange(uint8(ch), 0))
		prev := uint32(0)
		for _, e := range events {
			track.Add(e.tick-prev, e.message)
			prev = e.tick
		}
		track.Close(0)
		s.Add(track)
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("midiexport: create %s: %w", filename, err)
	}
	defer f.Close()
	if _, err := s.WriteTo(f); err != nil {
		return fmt.Errorf("midiexport: write %s: %w", filename, err)
	}
	return nil
}
