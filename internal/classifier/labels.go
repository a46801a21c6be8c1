// Package classifier maps feature vectors to gesture labels using a
// swappable, atomically-activated trained model.
package classifier

// builtinLabels is the closed built-in gesture taxonomy. Custom labels
// registered through training are unioned with this set at training time and
// may never collide with it.
var builtinLabels = []string{
	"open_hand",
	"closed_fist",
	"pointing",
	"thumbs_up",
	"peace_sign",
	"ok_sign",
	"grab",
	"release",
	"pinch",
	"spread",
	"rotate",
	"zoom",
	"swipe_left",
	"swipe_right",
	"swipe_up",
	"swipe_down",
	"select",
	"deselect",
}

var builtinSet = func() map[string]bool {
	m := make(map[string]bool, len(builtinLabels))
	for _, l := range builtinLabels {
		m[l] = true
	}
	return m
}()

// Builtins returns a copy of the built-in gesture label set.
func Builtins() []string {
	out := make([]string, len(builtinLabels))
	copy(out, builtinLabels)
	return out
}

// IsBuiltin reports whether the label belongs to the built-in taxonomy.
func IsBuiltin(label string) bool {
	return builtinSet[label]
}
