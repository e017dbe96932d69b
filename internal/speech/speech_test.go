package speech

import (
	"context"
	"errors"
	"io"
	"os"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name  string
	args  []string
	stdin string
}

// fakeRunner records every command and answers whisper runs by writing the
// transcript file named after its -of argument.
type fakeRunner struct {
	calls      []call
	transcript string
	failOn     string
	blockOn    string
	stdout     []byte
}

func (f *fakeRunner) run(ctx context.Context, stdin io.Reader, name string, args ...string) ([]byte, error) {
	c := call{name: name, args: args}
	if stdin != nil {
		b, _ := io.ReadAll(stdin)
		c.stdin = string(b)
	}
	f.calls = append(f.calls, c)

	if f.blockOn != "" && (name == f.blockOn || slices.Contains(args, f.blockOn)) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.failOn != "" && slices.Contains(args, f.failOn) {
		return nil, errors.New("device busy")
	}
	if name == "whisper-cli" {
		i := slices.Index(args, "-of")
		if err := os.WriteFile(args[i+1]+".txt", []byte(f.transcript), 0o644); err != nil {
			return nil, err
		}
	}
	return f.stdout, nil
}

func newTestRecognizer(f *fakeRunner) *SoxWhisper {
	r := NewSoxWhisper("sox", "whisper-cli", "/models/ggml-base.en.bin", time.Second, 5*time.Second)
	r.run = f.run
	return r
}

func TestSoxWhisper_Listen(t *testing.T) {
	f := &fakeRunner{transcript: "\n Patient reports\n chest pain. \n"}
	r := newTestRecognizer(f)

	text, err := r.Listen(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Patient reports chest pain.", text)

	require.Len(t, f.calls, 3)

	calibrate := f.calls[0]
	assert.Equal(t, "sox", calibrate.name)
	assert.Equal(t, []string{"trim", "0", "1"}, calibrate.args[3:6])
	assert.Equal(t, "noiseprof", calibrate.args[6])

	capture := f.calls[1]
	assert.Equal(t, "sox", capture.name)
	assert.Contains(t, capture.args, "noisered")
	i := slices.Index(capture.args, "trim")
	assert.Equal(t, "5", capture.args[i+2])

	transcribe := f.calls[2]
	assert.Equal(t, "whisper-cli", transcribe.name)
	assert.Equal(t, "/models/ggml-base.en.bin", transcribe.args[1])
}

func TestSoxWhisper_Listen_Unintelligible(t *testing.T) {
	for _, transcript := range []string{"", "   \n", "[BLANK_AUDIO]", " (coughing) [ Silence ]\n"} {
		f := &fakeRunner{transcript: transcript}
		r := newTestRecognizer(f)

		_, err := r.Listen(context.Background())
		assert.ErrorIs(t, err, ErrUnintelligible, "transcript %q", transcript)
	}
}

func TestSoxWhisper_Listen_CaptureFailure(t *testing.T) {
	f := &fakeRunner{failOn: "noisered"}
	r := newTestRecognizer(f)

	_, err := r.Listen(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnintelligible)
	assert.Contains(t, err.Error(), "audio capture failed")
	assert.Len(t, f.calls, 2)
}

func TestSoxWhisper_Listen_CalibrationFailure(t *testing.T) {
	f := &fakeRunner{failOn: "noiseprof"}
	r := newTestRecognizer(f)

	_, err := r.Listen(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "noise calibration failed")
	assert.Len(t, f.calls, 1)
}

func TestSoxWhisper_Listen_StalledStepTimesOut(t *testing.T) {
	for _, stalled := range []string{"noiseprof", "noisered", "whisper-cli"} {
		t.Run(stalled, func(t *testing.T) {
			f := &fakeRunner{blockOn: stalled, transcript: "hello"}
			r := NewSoxWhisper("sox", "whisper-cli", "model.bin", 10*time.Millisecond, 10*time.Millisecond)
			r.grace = 10 * time.Millisecond
			r.transcribe = 20 * time.Millisecond
			r.run = f.run

			done := make(chan error, 1)
			go func() {
				_, err := r.Listen(context.Background())
				done <- err
			}()

			select {
			case err := <-done:
				assert.ErrorIs(t, err, context.DeadlineExceeded)
			case <-time.After(5 * time.Second):
				t.Fatal("Listen did not return")
			}
		})
	}
}

func TestCleanTranscript(t *testing.T) {
	assert.Equal(t, "take two tablets", cleanTranscript("[00:00.000] take two\n tablets (breathing)"))
	assert.Equal(t, "", cleanTranscript("[BLANK_AUDIO]"))
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, "1", seconds(time.Second))
	assert.Equal(t, "0.5", seconds(500*time.Millisecond))
	assert.Equal(t, "5", seconds(5*time.Second))
}

const espeakVoices = `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  af              --/M      Afrikaans          gmw/af
 5  en-gb           --/M      English_(Great_Britain) gmw/en          (en 2)
 5  en-us           --/F      English_(America)  gmw/en-US            (en 3)
 5  es              --/M      Spanish_(Spain)    roa/es
 5  vi              --/F      Vietnamese_Northern sit/vi
`

func TestParseVoices(t *testing.T) {
	voices := parseVoices([]byte(espeakVoices))

	require.Len(t, voices, 5)
	assert.Equal(t, Voice{Name: "Afrikaans", Language: "af", Gender: VoiceMale, File: "gmw/af"}, voices[0])
	assert.Equal(t, "English_(Great_Britain)", voices[1].Name)
	assert.Equal(t, VoiceFemale, voices[2].Gender)
	assert.Equal(t, "Vietnamese_Northern", voices[4].Name)
}

func TestEspeak_VoicesAndSpeak(t *testing.T) {
	f := &fakeRunner{stdout: []byte(espeakVoices)}
	e := NewEspeak("espeak-ng")
	e.run = f.run

	voices, err := e.Voices(context.Background())
	require.NoError(t, err)
	require.Len(t, voices, 5)

	require.NoError(t, e.Speak(context.Background(), "Take two tablets daily.", voices[4]))

	speak := f.calls[1]
	assert.Equal(t, "espeak-ng", speak.name)
	assert.Equal(t, []string{"-v", "Vietnamese_Northern", "--stdin"}, speak.args)
	assert.Equal(t, "Take two tablets daily.", speak.stdin)
}

func TestEspeak_SpeakFailure(t *testing.T) {
	f := &fakeRunner{failOn: "--stdin"}
	e := NewEspeak("espeak-ng")
	e.run = f.run

	err := e.Speak(context.Background(), "hello", Voice{Name: "Afrikaans"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "speaking with voice Afrikaans")
}

func TestSelectVoice(t *testing.T) {
	voices := []Voice{{Name: "first"}, {Name: "middle"}, {Name: "last"}}

	tests := []struct {
		requested string
		want      string
	}{
		{"", "first"},
		{"male", "first"},
		{"female", "last"},
		{"robot", "last"},
	}

	for _, tt := range tests {
		t.Run(tt.requested, func(t *testing.T) {
			v, err := SelectVoice(voices, tt.requested)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Name)
		})
	}

	_, err := SelectVoice(nil, "male")
	assert.ErrorIs(t, err, ErrNoVoices)
}

func TestExecRunner(t *testing.T) {
	out, err := ExecRunner(context.Background(), strings.NewReader("ward 4\n"), "cat")
	if err != nil {
		t.Skip("cat not on PATH")
	}
	assert.Equal(t, "ward 4\n", string(out))

	_, err = ExecRunner(context.Background(), nil, "medtran-no-such-binary")
	assert.Error(t, err)
}
