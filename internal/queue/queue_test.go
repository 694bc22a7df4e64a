package queue_test

import (
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/website-monitor/internal/queue"
)

var _ = Describe("Queue", func() {
	var q *queue.Queue[int]

	BeforeEach(func() {
		q = queue.New[int]()
	})

	Describe("TryPop", func() {
		It("should return items in FIFO order", func() {
			q.Push(1)
			q.Push(2)
			q.Push(3)

			for _, want := range []int{1, 2, 3} {
				v, ok := q.TryPop(10 * time.Millisecond)
				Expect(ok).To(BeTrue())
				Expect(v).To(Equal(want))
			}
		})

		It("should time out on an empty queue", func() {
			start := time.Now()
			_, ok := q.TryPop(50 * time.Millisecond)

			Expect(ok).To(BeFalse())
			Expect(time.Since(start)).To(BeNumerically(">=", 50*time.Millisecond))
			Expect(time.Since(start)).To(BeNumerically("<", 500*time.Millisecond))
		})

		It("should wake up when an item is pushed while waiting", func() {
			go func() {
				time.Sleep(20 * time.Millisecond)
				q.Push(42)
			}()

			start := time.Now()
			v, ok := q.TryPop(time.Second)

			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(42))
			Expect(time.Since(start)).To(BeNumerically("<", 500*time.Millisecond))
		})
	})

	Describe("Len", func() {
		It("should track queue depth", func() {
			Expect(q.Len()).To(Equal(0))
			q.Push(1)
			q.Push(2)
			Expect(q.Len()).To(Equal(2))

			q.TryPop(time.Millisecond)
			Expect(q.Len()).To(Equal(1))
		})
	})

	Describe("Concurrent access", func() {
		It("should neither lose nor duplicate items across many producers and consumers", func() {
			const producers = 8
			const perProducer = 250
			const consumers = 6
			const total = producers * perProducer

			var (
				mutex sync.Mutex
				seen  = make(map[int]int, total)
				wg    sync.WaitGroup
				done  = make(chan struct{})
			)

			wg.Add(consumers)
			for c := 0; c < consumers; c++ {
				go func() {
					defer wg.Done()
					for {
						select {
						case <-done:
							return
						default:
						}

						v, ok := q.TryPop(5 * time.Millisecond)
						if !ok {
							continue
						}

						mutex.Lock()
						seen[v]++
						mutex.Unlock()
					}
				}()
			}

			var pw sync.WaitGroup
			pw.Add(producers)
			for p := 0; p < producers; p++ {
				go func(id int) {
					defer pw.Done()
					for i := 0; i < perProducer; i++ {
						q.Push(id*perProducer + i)
					}
				}(p)
			}
			pw.Wait()

			Eventually(func() int {
				mutex.Lock()
				defer mutex.Unlock()
				return len(seen)
			}, "5s", "10ms").Should(Equal(total))

			close(done)
			wg.Wait()

			for v, count := range seen {
				Expect(count).To(Equal(1), "item %d delivered %d times", v, count)
			}
			Expect(q.Len()).To(Equal(0))
		})

		It("should deliver one item to exactly one of several waiting consumers", func() {
			const consumers = 4

			results := make(chan bool, consumers)
			for i := 0; i < consumers; i++ {
				go func() {
					_, ok := q.TryPop(100 * time.Millisecond)
					results <- ok
				}()
			}

			time.Sleep(10 * time.Millisecond)
			q.Push(7)

			got := 0
			for i := 0; i < consumers; i++ {
				if <-results {
					got++
				}
			}
			Expect(got).To(Equal(1))
		})
	})
})
