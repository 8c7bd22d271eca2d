package internal

// EnvPrefix is a prefix of ENV variables related
// to cordwood configuration.
const EnvPrefix = "cordwood"

// EnvSeparator is a section separator in ENV variables.
const EnvSeparator = "_"
