package sdl2

import "errors"

// ErrAudioFormat is returned by Init when the audio device cannot run at
// the sample format the speaker produces.
var ErrAudioFormat = errors.New("sdl2: audio device rejected 8000 Hz signed 16-bit mono")
