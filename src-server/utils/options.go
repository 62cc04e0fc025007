package utils

import "github.com/bwmarrin/discordgo"

type OptionMap = map[string]*discordgo.ApplicationCommandInteractionDataOption

// LeafOptions walks down subcommand groups and subcommands and returns the
// path taken (e.g. ["logging", "channel"]) and the options of the last one.
func LeafOptions(options []*discordgo.ApplicationCommandInteractionDataOption) ([]string, OptionMap) {
	path := make([]string, 0, 2)
	for len(options) == 1 &&
		(options[0].Type == discordgo.ApplicationCommandOptionSubCommandGroup ||
			options[0].Type == discordgo.ApplicationCommandOptionSubCommand) {
		path = append(path, options[0].Name)
		options = options[0].Options
	}

	optionMap := make(OptionMap, len(options))
	for _, opt := range options {
		optionMap[opt.Name] = opt
	}
	return path, optionMap
}

// StringOption returns the raw value of a string-like option (string, channel,
// role, user and mentionable options all carry their value as a string).
func StringOption(options OptionMap, name string) (string, bool) {
	opt, ok := options[name]
	if !ok {
		return "", false
	}
	value, ok := opt.Value.(string)
	return value, ok
}

// IntOption reads an integer option. discordgo decodes numbers as float64.
func IntOption(options OptionMap, name string) (int64, bool) {
	opt, ok := options[name]
	if !ok {
		return 0, false
	}
	value, ok := opt.Value.(float64)
	return int64(value), ok
}
