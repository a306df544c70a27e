// Command ppuview is a small debug/demo driver for the NES core: it
// feeds a synthetic CHR pattern and a tiny hand-assembled 6502
// program through internal/console.Console, blits the resulting
// framebuffer with ebiten, and plays the mixed PCM stream with
// portaudio.
package main

import (
	"flag"
	"fmt"
	"image"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/golang/glog"
	"github.com/gordonklaus/portaudio"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/claude-student/nescore/internal/console"
	"github.com/claude-student/nescore/internal/ppu"
	"github.com/claude-student/nescore/internal/version"
)

var (
	dumpWAV    = flag.String("dump-wav", "", "write the APU's PCM stream to this .wav file instead of playing it live")
	dumpFrames = flag.Int("frames", 600, "number of frames to capture when -dump-wav is set")
	noAudio    = flag.Bool("no-audio", false, "disable live portaudio playback")
	showVer    = flag.Bool("version", false, "print version information and exit")
)

const (
	scale  = 3
	width  = 256
	height = 240
)

// demoCartridge supplies a synthetic CHR pattern (a single 2bpp
// checkerboard tile, repeated) and a tiny hand-assembled 6502 program
// that turns on background rendering and then loops forever.
type demoCartridge struct {
	prg [0x10000]uint8
	chr [0x2000]uint8
}

func newDemoCartridge() *demoCartridge {
	c := &demoCartridge{}

	// One 8x8 checkerboard tile at CHR offset 0, plane 0 only.
	for row := 0; row < 8; row++ {
		if row%2 == 0 {
			c.chr[row] = 0xAA
		} else {
			c.chr[row] = 0x55
		}
	}
	// The PPU's nametable RAM is already zeroed at power-on, which
	// selects tile 0 (the checkerboard above) and palette group 0
	// everywhere, so no explicit nametable/attribute fill is needed.

	// Reset vector -> $8000.
	c.prg[0xFFFC], c.prg[0xFFFD] = 0x00, 0x80

	prog := []uint8{
		0xA9, 0x3F, // LDA #$3F
		0x8D, 0x06, 0x20, // STA $2006 (PPUADDR hi)
		0xA9, 0x00, // LDA #$00
		0x8D, 0x06, 0x20, // STA $2006 (PPUADDR lo) -> v = $3F00
		0xA9, 0x21, // LDA #$21 (a visible blue-ish palette entry)
		0x8D, 0x07, 0x20, // STA $2007 (PPUDATA, palette[0] = $21)
		0xA9, 0x08, // LDA #$08
		0x8D, 0x01, 0x20, // STA $2001 (PPUMASK: enable background)
		0x4C, 0x00, 0x80, // JMP $8000 (loop forever)
	}
	copy(c.prg[0x8000:], prog)
	return c
}

func (d *demoCartridge) ReadPRG(addr uint16) uint8       { return d.prg[addr] }
func (d *demoCartridge) WritePRG(addr uint16, val uint8) { d.prg[addr] = val }
func (d *demoCartridge) ReadCHR(addr uint16) uint8       { return d.chr[addr] }
func (d *demoCartridge) WriteCHR(addr uint16, val uint8) { d.chr[addr] = val }

// game adapts Console.RunFrame to ebiten's Update/Draw/Layout contract.
type game struct {
	console *console.Console
	img     *ebiten.Image
	pixels  []byte
	onFrame func(samples []uint8)
}

func (g *game) Update() error {
	frame, samples := g.console.RunFrame()
	for i, px := range frame {
		r := uint8(px >> 16)
		gg := uint8(px >> 8)
		b := uint8(px)
		a := uint8(px >> 24)
		g.pixels[i*4+0] = r
		g.pixels[i*4+1] = gg
		g.pixels[i*4+2] = b
		g.pixels[i*4+3] = a
	}
	g.img.WritePixels(g.pixels)
	if g.onFrame != nil {
		g.onFrame(samples)
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	screen.DrawImage(g.img, op)
	ebitenutil.DebugPrint(screen, "ppuview")
}

func (g *game) Layout(int, int) (int, int) {
	return width * scale, height * scale
}

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println(version.Detailed())
		return
	}

	cart := newDemoCartridge()
	opts := console.DefaultOptions()
	opts.Mirror = ppu.MirrorHorizontal
	c := console.New(opts, cart)
	c.PowerOn()

	g := &game{
		console: c,
		img:     ebiten.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, width, height))),
		pixels:  make([]byte, width*height*4),
	}

	if *dumpWAV != "" {
		runWAVCapture(c, g, *dumpWAV, *dumpFrames)
		return
	}

	var stream *portaudio.Stream
	if !*noAudio {
		var err error
		var feed func(samples []uint8)
		stream, feed, err = startAudio(opts.SampleRate)
		if err != nil {
			glog.Warningf("ppuview: audio disabled: %v", err)
		} else {
			g.onFrame = feed
			defer stream.Close()
			defer portaudio.Terminate()
		}
	}

	ebiten.SetWindowSize(width*scale, height*scale)
	ebiten.SetWindowTitle("ppuview")
	if err := ebiten.RunGame(g); err != nil {
		glog.Errorf("ppuview: %v", err)
		os.Exit(1)
	}
}

// startAudio opens a live portaudio output stream fed by a small ring
// buffer; the returned feed function is wired to g.onFrame so every
// completed frame's samples get appended to it.
func startAudio(sampleRate int) (*portaudio.Stream, func(samples []uint8), error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, nil, err
	}
	ring := make([]uint8, 0, sampleRate)
	feed := func(samples []uint8) {
		ring = append(ring, samples...)
	}
	read := func(out []float32) {
		n := len(out)
		if n > len(ring) {
			n = len(ring)
		}
		for i := 0; i < n; i++ {
			out[i] = (float32(ring[i]) - 128) / 128
		}
		for i := n; i < len(out); i++ {
			out[i] = 0
		}
		ring = ring[n:]
	}
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(sampleRate), 0, read)
	if err != nil {
		return nil, nil, err
	}
	if err := stream.Start(); err != nil {
		return nil, nil, err
	}
	return stream, feed, nil
}

// runWAVCapture drives nFrames of emulation headlessly and writes the
// captured PCM stream to path using go-audio/wav, exercising a real
// WAV codec instead of a hand-rolled header writer.
func runWAVCapture(c *console.Console, g *game, path string, nFrames int) {
	f, err := os.Create(path)
	if err != nil {
		glog.Fatalf("ppuview: create %s: %v", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, 44100, 8, 1, 1)
	defer enc.Close()

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 44100},
		SourceBitDepth: 8,
	}

	for i := 0; i < nFrames; i++ {
		_, samples := c.RunFrame()
		buf.Data = buf.Data[:0]
		for _, s := range samples {
			buf.Data = append(buf.Data, int(s))
		}
		if err := enc.Write(buf); err != nil {
			glog.Fatalf("ppuview: write wav: %v", err)
		}
	}
	fmt.Printf("ppuview: wrote %d frames to %s\n", nFrames, path)
}
