package constants

// Colors is the fixed tracker palette, as hex RGB strings.
var Colors = []string{
	"#FD4C49", "#FF881E", "#007BFA", "#6E44FE", "#33CF69", "#E66DFA",
	"#F9D4D4", "#34A7FE", "#46E69D", "#35347C", "#FF674D", "#FF99CC",
	"#F6C48B", "#7994F5", "#832CF1", "#AD56DA", "#8D72E6", "#2FD058",
}

// Emojis is the fixed set of glyphs a tracker can carry.
var Emojis = []string{
	"🙂", "😻", "🌺", "🐶", "❤️", "😱",
	"😇", "😡", "🥶", "🤔", "🙌", "🍔",
	"🥦", "🏓", "🥇", "🎸", "🏝", "😪",
}
