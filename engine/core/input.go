package core

import "sync"

// Key code definitions. Values match the platform layer's translation table.
type KeyCode uint16

const (
	KEY_ESCAPE KeyCode = 0x1B
	KEY_SPACE  KeyCode = 0x20
	KEY_SHIFT  KeyCode = 0x10
	KEY_LEFT   KeyCode = 0x25
	KEY_UP     KeyCode = 0x26
	KEY_RIGHT  KeyCode = 0x27
	KEY_DOWN   KeyCode = 0x28
	KEY_A      KeyCode = 0x41
	KEY_D      KeyCode = 0x44
	KEY_S      KeyCode = 0x53
	KEY_W      KeyCode = 0x57

	KEYS_MAX_KEYS KeyCode = 0x100
)

type keyboardState struct {
	keys [KEYS_MAX_KEYS]bool
}

type inputState struct {
	keyboardCurrent  keyboardState
	keyboardPrevious keyboardState
	mutex            sync.RWMutex
}

var state *inputState

func InputInitialize() error {
	state = &inputState{}
	LogInfo("Input subsystem initialized")
	return nil
}

func InputShutdown() error {
	state = nil
	return nil
}

// InputUpdate copies current key states to the previous frame's snapshot.
// Call once per frame, after all events for the frame are processed.
func InputUpdate(deltaTime float64) error {
	state.mutex.Lock()
	defer state.mutex.Unlock()
	state.keyboardPrevious = state.keyboardCurrent
	return nil
}

func InputIsKeyDown(key KeyCode) bool {
	state.mutex.RLock()
	defer state.mutex.RUnlock()
	return state.keyboardCurrent.keys[key]
}

func InputWasKeyDown(key KeyCode) bool {
	state.mutex.RLock()
	defer state.mutex.RUnlock()
	return state.keyboardPrevious.keys[key]
}

func InputProcessKey(key KeyCode, pressed bool) error {
	if key >= KEYS_MAX_KEYS {
		return nil
	}
	state.mutex.Lock()
	defer state.mutex.Unlock()
	state.keyboardCurrent.keys[key] = pressed
	return nil
}
