package threshold

import (
	"math/rand"
	"sync"
	"testing"

	"go.viam.com/test"
)

func TestStoreDefaults(t *testing.T) {
	s := NewStore(DefaultRange())
	test.That(t, s.Snapshot(), test.ShouldResemble, DefaultRange())
	test.That(t, s.Lower(Hue), test.ShouldEqual, 0)
	test.That(t, s.Upper(Hue), test.ShouldEqual, 179)
}

func TestStoreRejectsInvertedBounds(t *testing.T) {
	s := NewStore(DefaultRange())

	test.That(t, s.SetLower(Hue, 50), test.ShouldBeTrue)
	test.That(t, s.SetUpper(Hue, 100), test.ShouldBeTrue)

	// would invert the range: rejected, previous value retained
	test.That(t, s.SetLower(Hue, 100), test.ShouldBeFalse)
	test.That(t, s.SetLower(Hue, 150), test.ShouldBeFalse)
	test.That(t, s.Lower(Hue), test.ShouldEqual, 50)

	test.That(t, s.SetUpper(Hue, 50), test.ShouldBeFalse)
	test.That(t, s.SetUpper(Hue, 20), test.ShouldBeFalse)
	test.That(t, s.Upper(Hue), test.ShouldEqual, 100)

	// a rejected bound does not affect the other channels
	test.That(t, s.SetUpper(Saturation, 200), test.ShouldBeTrue)
	test.That(t, s.Upper(Saturation), test.ShouldEqual, 200)
}

func TestStoreRejectsOutOfDomain(t *testing.T) {
	s := NewStore(DefaultRange())

	test.That(t, s.SetUpper(Hue, 255), test.ShouldBeFalse)
	test.That(t, s.Upper(Hue), test.ShouldEqual, 179)
	test.That(t, s.SetLower(Hue, -1), test.ShouldBeFalse)
	test.That(t, s.SetUpper(Saturation, 256), test.ShouldBeFalse)
	test.That(t, s.SetUpper(Saturation, 255), test.ShouldBeTrue)
}

func TestStoreInvariantUnderInterleavedUpdates(t *testing.T) {
	s := NewStore(DefaultRange())
	r := rand.New(rand.NewSource(11))
	channels := []Channel{Hue, Saturation, Value}

	for i := 0; i < 5000; i++ {
		ch := channels[r.Intn(len(channels))]
		v := r.Intn(300) - 10 // deliberately includes out-of-domain values
		if r.Intn(2) == 0 {
			s.SetLower(ch, v)
		} else {
			s.SetUpper(ch, v)
		}
		for _, c := range channels {
			test.That(t, s.Lower(c), test.ShouldBeLessThanOrEqualTo, s.Upper(c))
		}
	}
}

func TestStoreConcurrentWritesNotTorn(t *testing.T) {
	for run := 0; run < 20; run++ {
		s := NewStore(DefaultRange())
		var wg sync.WaitGroup
		write := func(v int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				s.SetLower(Hue, v)
			}
		}
		wg.Add(2)
		go write(10)
		go write(20)
		wg.Wait()

		got := s.Lower(Hue)
		test.That(t, got == 10 || got == 20, test.ShouldBeTrue)
		test.That(t, s.Upper(Hue), test.ShouldEqual, 179)
	}
}

func TestStoreConcurrentOppositeBoundWriters(t *testing.T) {
	// SetLower(150) and SetUpper(50) are mutually exclusive from a wide-open
	// range: whichever commits first makes the other an inversion. Exactly one
	// may be accepted, and the final pair must never invert, no matter how the
	// two racing writers interleave.
	for trial := 0; trial < 500; trial++ {
		s := NewStore(DefaultRange())
		var start, done sync.WaitGroup
		start.Add(1)
		done.Add(2)
		var loOK, hiOK bool
		go func() {
			defer done.Done()
			start.Wait()
			loOK = s.SetLower(Hue, 150)
		}()
		go func() {
			defer done.Done()
			start.Wait()
			hiOK = s.SetUpper(Hue, 50)
		}()
		start.Done()
		done.Wait()

		test.That(t, loOK != hiOK, test.ShouldBeTrue)
		test.That(t, s.Lower(Hue), test.ShouldBeLessThan, s.Upper(Hue))
		if loOK {
			test.That(t, s.Snapshot(), test.ShouldResemble,
				Range{LoH: 150, HiH: 179, HiS: 255, HiV: 255})
		} else {
			test.That(t, s.Snapshot(), test.ShouldResemble,
				Range{HiH: 50, HiS: 255, HiV: 255})
		}
	}
}

func TestStoreConcurrentReadersSeeAcceptedValues(t *testing.T) {
	s := NewStore(DefaultRange())
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
			}
			s.SetLower(Saturation, i%100)
			s.SetUpper(Saturation, 100+i%100)
		}
	}()

	for i := 0; i < 10000; i++ {
		snap := s.Snapshot()
		test.That(t, snap.LoS, test.ShouldBeLessThanOrEqualTo, 99)
		test.That(t, snap.HiS, test.ShouldBeGreaterThanOrEqualTo, 100)
	}
	close(done)
	wg.Wait()
}

func TestChannelMax(t *testing.T) {
	test.That(t, Hue.Max(), test.ShouldEqual, 179)
	test.That(t, Saturation.Max(), test.ShouldEqual, 255)
	test.That(t, Value.Max(), test.ShouldEqual, 255)
}

func TestRangeContains(t *testing.T) {
	r := Range{LoH: 10, HiH: 20, LoS: 30, HiS: 40, LoV: 50, HiV: 60}
	test.That(t, r.Contains(10, 30, 50), test.ShouldBeTrue)
	test.That(t, r.Contains(20, 40, 60), test.ShouldBeTrue)
	test.That(t, r.Contains(15, 35, 55), test.ShouldBeTrue)
	test.That(t, r.Contains(9, 35, 55), test.ShouldBeFalse)
	test.That(t, r.Contains(15, 41, 55), test.ShouldBeFalse)
	test.That(t, r.Contains(15, 35, 49), test.ShouldBeFalse)
}
