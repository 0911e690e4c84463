package shell

import "strings"

const (
	largeBannerWidth  = 86
	mediumBannerWidth = 54
)

var bannerLarge = bannerText([]string{
	"                                                                                      ",
	"                                                                                      ",
	"  .--.--.     ,---,                                                         ,---,     ",
	" /  /    '. ,--.' |      ,--,                                             ,--.' |     ",
	"|  :  /`. / |  |  :    ,--.'|                             ,---,           |  |  :     ",
	";  |  |--`  :  :  :    |  |,      .---.               ,-+-. /  | .--.--.  :  :  :     ",
	"|  :  ;_    :  |  |,--.`--'_    /.  ./|   ,--.--.    ,--.'|'   |/  /    ' :  |  |,--. ",
	" \\  \\    `. |  :  '   |,' ,'| .-' . ' |  /       \\  |   |  ,\"' |  :  /`./ |  :  '   | ",
	"  `----.   \\|  |   /' :'  | |/___/ \\: | .--.  .-. | |   | /  | |  :  ;_   |  |   /' : ",
	"  __ \\  \\  |'  :  | | ||  | :.   \\  ' .  \\__\\/: . . |   | |  | |\\  \\    `.'  :  | | | ",
	" /  /`--'  /|  |  ' | :'  : |_\\   \\   '  ,\" .--.; | |   | |  |/  `----.   \\  |  ' | : ",
	"'--'.     / |  :  :_:,'|  | '.'\\   \\    /  /  ,.  | |   | |--'  /  /`--'  /  :  :_:,' ",
	"  `--'---'  |  | ,'    ;  :    ;\\   \\ |;  :   .'   \\|   |/     '--'.     /|  | ,'     ",
	"  .--.--.   `--''      |  ,   /  '---\" |  ,     .-./'---'        `--'---' `--''       ",
	" /  /    '.             ---`-'      ,--,`--`---'                                      ",
	"|  :  /`. /    ,---.        ,---, ,--.'|                                               ",
	";  |  |--`    '   ,'\\   ,-+-. /  ||  |,                                                ",
	"|  :  ;_     /   /   | ,--.'|'   |`--'_                                                ",
	" \\  \\    `. .   ; ,. :|   |  ,\"' |,' ,'|                                               ",
	"  `----.   \\'   | |: :|   | /  | |'  | |                                               ",
	"  __ \\  \\  |'   | .; :|   | |  | ||  | :                                               ",
	" /  /`--'  /|   :    ||   | |  |/ '  : |__                                             ",
	"'--'.     /  \\   \\  / |   | |--'  |  | '.'|                                            ",
	"  `--'---'    `----'  |   |/      ;  :    ;                                            ",
	"                      '---'       |  ,   /                                             ",
	"                                   ---`-'                                              ",
	"                                                                                      ",
})

var bannerMedium = bannerText([]string{
	" .----..-. .-..-..-. .-.  .--.  .-. .-. .----..-. .-.",
	"{ {__  | {_} || || | | | / {} \\ |  `| |{ {__  | {_} |",
	".-._} }| { } || |\\ \\_/ //  /\\  \\| |\\  |.-._} }| { } |",
	"`----' `-' `-'`-' `---' `-'  `-'`-' `-'`----' `-' `-'",
	" .----. .----. .-. .-..-.",
	"{ {__  /  {}  \\|  `| || |",
	".-._} }\\      /| |\\  || |",
	"`----'  `----' `-' `-'`-'",
	"",
})

var bannerSmall = bannerText([]string{
	"",
	"▄▖▌ ▘        ▌ ",
	"▚ ▛▌▌▌▌▀▌▛▌▛▘▛▌",
	"▄▌▌▌▌▚▘█▌▌▌▄▌▌▌",
	"               ",
	"▄▖    ▘        ",
	"▚ ▛▌▛▌▌        ",
	"▄▌▙▌▌▌▌        ",
	"               ",
})

func bannerText(lines []string) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(out, "\n")
}

// bannerFor picks the largest banner that fits cols.
func bannerFor(cols int) string {
	switch {
	case cols >= largeBannerWidth:
		return bannerLarge
	case cols >= mediumBannerWidth:
		return bannerMedium
	default:
		return bannerSmall
	}
}
