package main

// Banner returns the banner printed by the unified entry point.
func Banner() string {
	return `
   ____          _         ____
  / ___|__ _ ___| |_ ___  |  _ \  _____      ___ __
 | |   / _` + "`" + ` / __| __/ __| | | | |/ _ \ \ /\ / / '_ \
 | |__| (_| \__ \ |_\__ \ | |_| | (_) \ V  V /| | | |
  \____\__,_|___/\__|___/ |____/ \___/ \_/\_/ |_| |_|

    Podcast Downloader (Apple Podcasts, Xiaoyuzhou, RSS)
`
}

// Disclaimer returns the usage disclaimer.
func Disclaimer() string {
	return `
[!] DISCLAIMER: For educational purposes only. Respect copyrights.
    Use for personal learning and research, comply with the law and
    the terms of service of each platform.
`
}
